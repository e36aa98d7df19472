// scenetool is a CLI utility for inspecting and headlessly rendering scenes.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Faultbox/skyscene/internal/app"
	"github.com/Faultbox/skyscene/internal/config"
	"github.com/Faultbox/skyscene/internal/engine/debug"
	"github.com/Faultbox/skyscene/internal/engine/gpu/softgpu"
	"github.com/Faultbox/skyscene/internal/importer"
	"github.com/Faultbox/skyscene/internal/logger"
	"github.com/Faultbox/skyscene/internal/sceneinfo"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "dump":
		err = cmdDump(args)
	case "validate":
		err = cmdValidate(args)
	case "render":
		err = cmdRender(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`scenetool - scene inspection utility

Usage:
  scenetool <command> [options]

Commands:
  dump <scene> [info]                 Print nodes, meshes, bones, lights and materials
  validate [options] <scene> [info]   Load scene, metadata and skybox, render one frame
  render [options] <scene> [info]     Render one frame with the software device to PNG

Examples:
  scenetool dump bunnyscene.glb bunnyscene_info.json
  scenetool validate -skybox rainbow -skybox-dir resources/skyboxes bunnyscene.glb
  scenetool render -o frame.png -pipeline deferred -sunsky -blur bunnyscene.glb`)
}

func cmdDump(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: scenetool dump <scene> [info]")
	}
	asset, err := importer.Load(args[0])
	if err != nil {
		return err
	}
	info := sceneinfo.Empty()
	if len(args) > 1 {
		if info, err = sceneinfo.Load(args[1]); err != nil {
			return err
		}
	}

	w := os.Stdout
	writeNodes(w, asset.Graph)
	fmt.Fprintln(w)
	writeMeshes(w, asset.Graph)
	if asset.Clip != nil {
		fmt.Fprintln(w)
		writeClip(w, asset.Clip)
	}
	fmt.Fprintln(w)
	writeLights(w, info.SceneLights())
	fmt.Fprintln(w)
	writeMaterials(w, info)
	return nil
}

// frameOptions are the flags shared by validate and render.
type frameOptions struct {
	cfg  *config.Config
	time float64
}

func parseFrameFlags(name string, args []string, extra func(*flag.FlagSet)) (*frameOptions, error) {
	cfg := config.Default()
	cfg.Scene.Skybox = ""
	opts := &frameOptions{cfg: cfg}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.IntVar(&cfg.Window.Width, "width", 320, "Image width")
	fs.IntVar(&cfg.Window.Height, "height", 240, "Image height")
	fs.StringVar(&cfg.Render.Pipeline, "pipeline", config.PipelineAuto, "auto, forward or deferred")
	fs.StringVar(&cfg.Scene.Camera, "camera", config.CameraAuto, "auto, builtin or default")
	fs.StringVar(&cfg.Scene.Skybox, "skybox", "", "Skybox name")
	fs.StringVar(&cfg.Scene.SkyboxDir, "skybox-dir", cfg.Scene.SkyboxDir, "Skybox directory")
	fs.IntVar(&cfg.Render.ShadowResolution, "shadow", 256, "Shadow map resolution")
	fs.Float64Var(&opts.time, "t", 0, "Animation time in seconds")
	debugLog := fs.Bool("debug", false, "Enable debug logging")
	if extra != nil {
		extra(fs)
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() < 1 {
		return nil, fmt.Errorf("usage: scenetool %s [options] <scene> [info]", name)
	}
	cfg.Scene.File = fs.Arg(0)
	cfg.Scene.Info = fs.Arg(1)
	cfg.Render.Skybox = cfg.Scene.Skybox != ""
	if *debugLog {
		cfg.Logging.Level = "debug"
	} else {
		cfg.Logging.Level = "warn"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Logging.Level, ""); err != nil {
		return nil, err
	}
	return opts, nil
}

// renderFrame loads the configured scene and renders one frame on a
// software device.
func renderFrame(opts *frameOptions, modes func(*app.App)) (*app.App, *softgpu.Device, frameStats, error) {
	cfg := opts.cfg
	var st frameStats

	t0 := time.Now()
	src, err := app.LoadSources(app.NewAssetManager(cfg), cfg)
	if err != nil {
		return nil, nil, st, err
	}
	st.load = time.Since(t0)

	dev := softgpu.New(cfg.Window.Width, cfg.Window.Height)
	a, err := app.New(dev, cfg, src, cfg.Window.Width, cfg.Window.Height)
	if err != nil {
		return nil, nil, st, err
	}
	if modes != nil {
		modes(a)
	}

	t0 = time.Now()
	st.passes = a.Frame(opts.time)
	st.render = time.Since(t0)
	st.draws, st.fragments = dev.Stats()
	if err := dev.Err(); err != nil {
		a.Close()
		return nil, nil, st, err
	}
	return a, dev, st, nil
}

func cmdValidate(args []string) error {
	opts, err := parseFrameFlags("validate", args, nil)
	if err != nil {
		return err
	}
	a, _, st, err := renderFrame(opts, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	writeFrameStats(os.Stdout, a, st)
	fmt.Println("OK")
	return nil
}

func cmdRender(args []string) error {
	var (
		out                                 string
		sunSky, blur, gbuffer, flat, mirror bool
		exposure                            float64
		theta, turbidity                    float64
	)
	opts, err := parseFrameFlags("render", args, func(fs *flag.FlagSet) {
		fs.StringVar(&out, "o", "frame.png", "Output PNG")
		fs.BoolVar(&sunSky, "sunsky", false, "Show the analytic sky (deferred)")
		fs.BoolVar(&blur, "blur", false, "Bloom on the sun-sky image (deferred)")
		fs.BoolVar(&gbuffer, "gbuffer", false, "Show the G-buffer (deferred)")
		fs.BoolVar(&flat, "flat", false, "Flat shading (forward)")
		fs.BoolVar(&mirror, "mirror", true, "Skybox reflections")
		fs.Float64Var(&exposure, "exposure", 1, "Display exposure")
		fs.Float64Var(&theta, "theta", 85, "Sun zenith angle in degrees")
		fs.Float64Var(&turbidity, "turbidity", 7, "Atmospheric turbidity")
	})
	if err != nil {
		return err
	}

	a, dev, st, err := renderFrame(opts, func(a *app.App) {
		m := &a.Pipeline().Modes
		m.SetFlat(flat)
		m.SetGBufferView(gbuffer)
		m.SetMirror(mirror)
		if sunSky {
			m.SetSunSky(true)
		}
		m.SetBlur(blur)
		a.SetExposure(float32(exposure))
		a.SetSky(float32(theta), float32(turbidity))
	})
	if err != nil {
		return err
	}
	defer a.Close()

	img, err := dev.ReadPixels(nil, 0)
	if err != nil {
		return err
	}
	if err := debug.WritePNG(out, img.ToNRGBA()); err != nil {
		return err
	}
	writeFrameStats(os.Stdout, a, st)
	fmt.Printf("Wrote %s\n", out)
	return nil
}
