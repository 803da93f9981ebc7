package main

import (
	"context"
	"fmt"
	"time"

	"github.com/Inspyre-Softworks/led-matrix-battery/internal/matrix"
)

// forEachModule discovers the attached modules and runs fn against each
// one over a short-lived serial connection.
func forEachModule(fn func(dev *matrix.Device) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	infos, err := matrix.Discover(cfg.Devices, nil)
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		return fmt.Errorf("no LED matrix modules found")
	}

	responseTimeout, _ := time.ParseDuration(cfg.Serial.ResponseTimeout)

	var firstErr error
	for _, info := range infos {
		dev, err := matrix.Open(info, cfg.Serial.BaudRate, responseTimeout, nil)
		if err != nil {
			fmt.Printf("%s: open failed: %v\n", info.Port, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if err := fn(dev); err != nil {
			fmt.Printf("%s: %v\n", info.Port, err)
			if firstErr == nil {
				firstErr = err
			}
		}
		dev.Close()
	}
	return firstErr
}

func oneShotBrightness(value int) error {
	if value < 0 || value > 100 {
		return fmt.Errorf("brightness must be between 0 and 100, got %d", value)
	}
	return forEachModule(func(dev *matrix.Device) error {
		if err := matrix.SetBrightness(dev, value); err != nil {
			return err
		}
		fmt.Printf("%s (%s): brightness set to %d%%\n", dev.Info().Port, dev.Info().Abbrev(), value)
		return nil
	})
}

func oneShotIdentify() error {
	return forEachModule(func(dev *matrix.Device) error {
		info := dev.Info()
		fmt.Printf("%s: slot %s, serial %s\n", info.Port, info.Abbrev(), info.SerialNumber)
		return matrix.Identify(context.Background(), dev, info, 6*time.Second, 3)
	})
}

func oneShotClear() error {
	return forEachModule(func(dev *matrix.Device) error {
		if err := matrix.Clear(dev); err != nil {
			return err
		}
		fmt.Printf("%s (%s): cleared\n", dev.Info().Port, dev.Info().Abbrev())
		return nil
	})
}
