package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/fatih/color"

	"github.com/kscalelabs/kmotor/internal/catalog"
	"github.com/kscalelabs/kmotor/internal/command"
	"github.com/kscalelabs/kmotor/internal/config"
	"github.com/kscalelabs/kmotor/internal/controlloop"
	"github.com/kscalelabs/kmotor/internal/imu"
	"github.com/kscalelabs/kmotor/internal/launchui"
	"github.com/kscalelabs/kmotor/internal/motordriver"
	"github.com/kscalelabs/kmotor/internal/policy"
	"github.com/kscalelabs/kmotor/internal/shutdown"
	"github.com/kscalelabs/kmotor/internal/telemetry"
)

func main() {
	configPath := flag.String("config", "/etc/kmotor/config.yaml", "Path to config file")
	archivePath := flag.String("policy", "", "Override policy archive path")
	flag.Parse()

	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	color.Cyan("kmotor starting")

	cfg := config.Load(*configPath)
	if *archivePath != "" {
		cfg.Policy.ArchivePath = *archivePath
	}

	sm := shutdown.New()
	defer sm.Execute()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sm.Register("cancel context", cancel)

	robot := catalog.BuildRobotConfig()

	driver, err := motordriver.Open(cfg.CAN.Interfaces, robot, cfg.CAN.MaxScaling)
	if err != nil {
		color.Red("ERROR: motor driver init failed: %v", err)
		os.Exit(1)
	}
	// shutdown.Manager.Execute runs callbacks LIFO, so registering "close CAN
	// buses" before "ramp down motors" makes the ramp-down run first on
	// shutdown: motors are commanded to zero torque before the sockets that
	// would carry that command are closed.
	sm.Register("close CAN buses", driver.Close)
	sm.Register("ramp down motors", func() {
		rampCtx, rampCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer rampCancel()
		if err := driver.RampDown(rampCtx); err != nil {
			color.Red("error ramping down motors: %v", err)
		}
	})

	if _, err := driver.StartupSequence(ctx); err != nil {
		color.Red("ERROR: %v", err)
		sm.Execute()
		os.Exit(1)
	}

	imuReader := openIMU(cfg)
	sm.Register("close imu", func() { imuReader.Close() })

	cmdSource, err := openCommandSource(cfg)
	if err != nil {
		color.Red("ERROR: command source init failed: %v", err)
		sm.Execute()
		os.Exit(1)
	}
	sm.Register("close command source", func() { cmdSource.Close() })

	var logger *telemetry.Logger
	if cfg.Telemetry.Enabled {
		logger, err = telemetry.Open(cfg.Telemetry.Dir)
		if err != nil {
			color.Yellow("WARNING: telemetry disabled, failed to open: %v", err)
		} else {
			sm.Register("close telemetry logger", func() { logger.Close() })
		}
	}

	archivePathResolved := cfg.Policy.ArchivePath
	if archivePathResolved == "" {
		color.Red("ERROR: no policy archive configured")
		sm.Execute()
		os.Exit(1)
	}
	archive, err := policy.Load(archivePathResolved)
	if err != nil {
		color.Red("ERROR: %v", err)
		sm.Execute()
		os.Exit(1)
	}
	color.Green("Loaded policy archive with %d joints", len(archive.Metadata.JointNames))

	runtime := policy.NoopRuntime{ActionDim: len(archive.Metadata.JointNames)}

	ui := launchui.New(cfg.LaunchUI.ListenAddr)
	go func() {
		if err := ui.Run(ctx); err != nil {
			color.Yellow("WARNING: launch UI server exited: %v", err)
		}
	}()

	if err := driver.EnableAndHome(ctx); err != nil {
		color.Red("ERROR: failed to enable and home actuators: %v", err)
		sm.Execute()
		os.Exit(1)
	}

	loop := &controlloop.Loop{
		Driver:     driver,
		IMU:        imuReader,
		Command:    cmdSource,
		Runtime:    runtime,
		Logger:     logger,
		JointOrder: archive.Metadata.JointNames,
		MaxScaling: cfg.CAN.MaxScaling,
	}

	color.Green("kmotor ready, entering control loop")
	if err := loop.Run(ctx); err != nil {
		color.Red("ERROR: control loop exited: %v", err)
		sm.Execute()
		os.Exit(1)
	}

	color.Cyan("kmotor shutting down cleanly")
}

func openIMU(cfg *config.Config) imu.Reader {
	switch cfg.IMU.Type {
	case "serial":
		r, err := imu.OpenSerial(cfg.IMU.Device, cfg.IMU.BaudRate)
		if err != nil {
			color.Yellow("WARNING: IMU serial open failed (%v), falling back to dummy", err)
			return imu.NewDummy()
		}
		return r
	case "i2c":
		r, err := imu.OpenI2C(cfg.IMU.I2CBus, cfg.IMU.I2CAddr, time.Second/time.Duration(cfg.IMU.PollHz))
		if err != nil {
			color.Yellow("WARNING: IMU i2c open failed (%v), falling back to dummy", err)
			return imu.NewDummy()
		}
		return r
	default:
		return imu.NewDummy()
	}
}

func openCommandSource(cfg *config.Config) (command.Source, error) {
	switch cfg.Command.Type {
	case "udp":
		return command.OpenUDP(cfg.Command.UDPPort)
	default:
		return command.OpenTTY()
	}
}
