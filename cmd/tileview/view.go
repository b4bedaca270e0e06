package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/eak1mov/go-tileview/viewport"
	"github.com/google/subcommands"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const (
	doubleClickInterval = 500 * time.Millisecond
	doubleClickDistance = 4
)

type viewCmd struct {
	configPath string
	status     bool
}

func (c *viewCmd) Name() string     { return "view" }
func (c *viewCmd) Synopsis() string { return "open an interactive viewer window" }
func (c *viewCmd) Usage() string {
	return "tileview view -config <path> [-status]\n"
}
func (c *viewCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.configPath, "config", "tileview.yml", "Config file path")
	f.BoolVar(&c.status, "status", false, "Show zoom level and pending tiles")
}

func (c *viewCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	cfg, logger, err := loadConfig(c.configPath)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}

	loader, err := newLoader(cfg, logger)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	defer loader.Close()

	container := &sizeContainer{cfg.Window.Width, cfg.Window.Height}
	canvas := newEbitenCanvas()
	vp, err := viewport.New(container, canvas, loader, cfg.ViewportConfig(),
		viewport.WithLogger(logger),
		viewport.WithTileSize(cfg.TileSize),
	)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowTitle(cfg.Window.Title)

	v := &viewer{
		vp:        vp,
		gestures:  viewport.NewGestures(vp),
		canvas:    canvas,
		container: container,
		status:    c.status,
	}
	if err := ebiten.RunGame(v); err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// viewer implements ebiten.Game interface: it feeds input into the gesture state
// machine, runs the viewport loop and presents the viewport canvas.
type viewer struct {
	vp        *viewport.Viewport
	gestures  *viewport.Gestures
	canvas    *ebitenCanvas
	container *sizeContainer
	status    bool

	layoutW, layoutH int

	clickAt        time.Time
	clickX, clickY int
}

func (v *viewer) Update() error {
	if v.layoutW > 0 && v.layoutH > 0 &&
		(v.layoutW != v.container.width || v.layoutH != v.container.height) {
		v.container.width, v.container.height = v.layoutW, v.layoutH
		v.vp.ResizeToContainer()
	}

	v.updateMouse()
	v.updateTouches()

	v.vp.Update()
	v.gestures.Update()
	return nil
}

func (v *viewer) updateMouse() {
	x, y := ebiten.CursorPosition()
	fx, fy := float64(x), float64(y)

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		now := time.Now()
		if now.Sub(v.clickAt) <= doubleClickInterval &&
			abs(x-v.clickX) <= doubleClickDistance && abs(y-v.clickY) <= doubleClickDistance {
			v.clickAt = time.Time{}
			v.gestures.DoubleClick(fx, fy)
		} else {
			v.clickAt, v.clickX, v.clickY = now, x, y
		}
		v.gestures.PointerDown(fx, fy)
	}
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		v.gestures.PointerMove(fx, fy)
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		v.gestures.PointerUp(fx, fy)
	}

	if _, dy := ebiten.Wheel(); dy != 0 {
		v.gestures.Wheel(fx, fy, dy)
	}
}

func (v *viewer) updateTouches() {
	ids := ebiten.AppendTouchIDs(nil)
	touches := make([]viewport.Point, 0, len(ids))
	for _, id := range ids {
		x, y := ebiten.TouchPosition(id)
		touches = append(touches, viewport.Point{X: float64(x), Y: float64(y)})
	}

	switch {
	case len(inpututil.AppendJustPressedTouchIDs(nil)) > 0:
		v.gestures.TouchStart(touches)
	case len(touches) > 0:
		v.gestures.TouchMove(touches)
	}
	for _, id := range inpututil.AppendJustReleasedTouchIDs(nil) {
		x, y := inpututil.TouchPositionInPreviousTick(id)
		v.gestures.TouchEnd(float64(x), float64(y))
	}
}

func (v *viewer) Draw(screen *ebiten.Image) {
	if v.canvas.off != nil {
		screen.DrawImage(v.canvas.off, nil)
	}
	if v.status {
		t := v.vp.Transform()
		ebitenutil.DebugPrint(screen, fmt.Sprintf("level %d  scale %.4f  pending %d  %v",
			v.vp.Level(), t.Scale, v.vp.Pending(), v.gestures.State()))
	}
}

// Layout records the window size; the viewport is resized on the next Update.
func (v *viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	v.layoutW, v.layoutH = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
