package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"highway/internal/sim"
)

const envPrefix = "HIGHWAY"

var (
	lanes    int
	fps      int
	rate     float64
	seed     uint64
	display  bool
	episodes int
	debug    bool
)

var rootCmd = &cobra.Command{
	Use:   "highway",
	Short: "Multi-lane highway traffic simulator",
	RunE: func(cmd *cobra.Command, args []string) error {
		bindFlags(cmd)
		return run()
	},
}

func init() {
	rootCmd.Flags().IntVar(&lanes, "lanes", sim.DefaultLanes, "number of lanes")
	rootCmd.Flags().IntVar(&fps, "fps", sim.DefaultFPS, "ticks per second (dt = 1/fps)")
	rootCmd.Flags().Float64Var(&rate, "rate", sim.DefaultTrafficRate,
		"peak traffic arrival rate, vehicles per second")
	rootCmd.Flags().Uint64Var(&seed, "seed", 0, "RNG seed (0 = derive from clock)")
	rootCmd.Flags().BoolVar(&display, "display", true, "render the simulation in a window")
	rootCmd.Flags().IntVar(&episodes, "episodes", 0,
		"stop after this many episodes (0 = run until the window closes)")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "verbose logging")
}

// bindFlags lets HIGHWAY_* environment variables stand in for unset flags.
func bindFlags(cmd *cobra.Command) {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	_ = viper.BindPFlags(cmd.Flags())
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if !f.Changed && viper.IsSet(f.Name) {
			_ = cmd.Flags().Set(f.Name, fmt.Sprintf("%v", viper.Get(f.Name)))
		}
	})
}

func run() error {
	if display {
		// GLFW and GL require the main thread.
		runtime.LockOSThread()
	}

	logCfg := zap.NewDevelopmentConfig()
	if debug {
		logCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := logCfg.Build()
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	if !display && episodes == 0 {
		episodes = 1
	}

	env, err := sim.NewEnv(sim.Options{
		Lanes:       lanes,
		FPS:         fps,
		TrafficRate: rate,
		Seed:        seed,
		Display:     display,
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	defer env.Close()

	if display {
		if err := sim.InitAudio(); err != nil {
			fmt.Fprintf(os.Stderr, "audio init failed (continuing without sound): %v\n", err)
		}
	}

	logger.Info("simulation start",
		zap.Int("lanes", lanes),
		zap.Int("fps", fps),
		zap.Float64("rate", rate),
		zap.Uint64("seed", seed))

	env.Reset()
	for {
		_, _, done, _ := env.Step(nil)
		if err := env.Render("human"); err != nil {
			if errors.Is(err, sim.ErrClosed) {
				return nil
			}
			return err
		}
		if done {
			if episodes > 0 && env.Episode() >= episodes {
				return nil
			}
			env.Reset()
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
