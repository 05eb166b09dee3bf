package main

import (
	"context"
	_ "embed"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	log "github.com/echocat/slf4g"
	"github.com/echocat/slf4g/native"
	"github.com/echocat/slf4g/native/facade/value"
	"github.com/echocat/slf4g/native/formatter"
	"github.com/getlantern/systray"

	"github.com/blaubaer/onair-indicator/pkg/app"
	"github.com/blaubaer/onair-indicator/pkg/indicator"
	"github.com/blaubaer/onair-indicator/pkg/indicator/menubar"
)

func main() {
	lv := value.NewProvider(native.DefaultProvider)
	lv.Consumer.Formatter.Codec = value.MappingFormatterCodec{
		"text": formatter.NewText(func(v *formatter.Text) {
			bv := true
			v.AllowMultiLineMessage = &bv
			v.MultiLineMessageAfterFields = &bv
		}),
		"json": formatter.NewJson(),
	}

	mb := &menubar.Menubar{
		Icons: menubar.Icons{
			Idle:       idleIcon,
			Camera:     cameraIcon,
			Microphone: microphoneIcon,
			Both:       bothIcon,
			Suppressed: suppressedIcon,
		},
	}

	a := app.NewApp()
	a.OtherIndicators = []indicator.Indicator{mb}

	cmd := kingpin.New(os.Args[0], "").
		Action(func(*kingpin.ParseContext) error {
			if err := mb.Initialize(); err != nil {
				return err
			}
			if err := a.Initialize(); err != nil {
				return err
			}
			systray.Run(func() {
				defer func() { _ = a.Dispose() }()

				systray.SetIcon(idleIcon)
				systray.SetTitle("OnAir indicator")
				muteMi := systray.AddMenuItem("Mute indicators", "Keeps all indicators dark until unmuted.")
				quitMi := systray.AddMenuItem("Exit", "Exit the OnAir indicator.")

				ctx, cancel := context.WithCancel(context.Background())
				defer cancel()

				go func() {
					c := make(chan os.Signal, 1)
					signal.Notify(c, os.Interrupt, syscall.SIGTERM)
					for {
						select {
						case <-muteMi.ClickedCh:
							if a.ToggleMute() {
								muteMi.SetTitle("Unmute indicators")
								muteMi.SetTooltip("Lets the indicators reflect device usage again.")
							} else {
								muteMi.SetTitle("Mute indicators")
								muteMi.SetTooltip("Keeps all indicators dark until unmuted.")
							}
						case <-c:
							log.Info("Terminated. Going down...")
							cancel()
						case <-quitMi.ClickedCh:
							log.Info("Exit clicked. Going down...")
							cancel()
						}
					}
				}()

				if err := a.Run(ctx); err != nil {
					log.WithError(err).
						Error("Cannot run the application.")
					os.Exit(1)
				}
				os.Exit(0)
			}, nil)
			return nil
		})
	a.SetupConfiguration(cmd)

	cmd.Flag("log.level", "").
		SetValue(lv.Level)
	cmd.Flag("log.format", "").
		Default("text").
		SetValue(lv.Consumer.Formatter)
	cmd.Flag("log.color", "").
		Default("always").
		SetValue(lv.Consumer.Formatter.ColorMode)

	kingpin.MustParse(cmd.Parse(os.Args[1:]))
}

var (
	//go:embed assets/idle.ico
	idleIcon []byte
	//go:embed assets/camera.ico
	cameraIcon []byte
	//go:embed assets/microphone.ico
	microphoneIcon []byte
	//go:embed assets/both.ico
	bothIcon []byte
	//go:embed assets/suppressed.ico
	suppressedIcon []byte
)
