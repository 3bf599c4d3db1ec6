package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"

	"quadfc/eeprom"
	"quadfc/host/config"
	"quadfc/host/serial"
)

var (
	configFile = flag.String("config", "", "JSON tuning file (stock gains when empty)")
	output     = flag.String("o", "promdata.eep", "Intel HEX output file ('-' for stdout)")
	device     = flag.String("device", "", "Serial device to upload the image to")
	baud       = flag.Int("baud", 115200, "Baud rate (ignored for USB CDC)")
	decode     = flag.String("decode", "", "Decode an existing HEX image and exit")
)

func main() {
	flag.Parse()

	if *decode != "" {
		if err := decodeImage(*decode); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	tune := config.DefaultTuneConfig()
	if *configFile != "" {
		data, err := os.ReadFile(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		tune, err = config.LoadConfig(data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to parse %s: %v\n", *configFile, err)
			os.Exit(1)
		}
	}

	fw, err := tune.Firmware()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	printGains("roll", tune.Roll, fw.Roll)
	printGains("pitch", tune.Pitch, fw.Pitch)
	printGains("yaw", tune.Yaw, fw.Yaw)
	fmt.Fprintf(os.Stderr, "ESC divisor %d\n", fw.ESCDivisor)

	img := fw.Encode()
	if err := writeImage(*output, img); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *device == "" {
		return
	}
	if err := upload(*device, *baud, img); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintln(os.Stderr, "Image stored on flight controller")
}

func printGains(axis string, in config.AxisGains, out eeprom.PIDParams) {
	fmt.Fprintf(os.Stderr, "%-5s Kp %g Ki %g Kd %g -> kp %d ki %d kd %d / %d\n",
		axis, in.KP, in.KI, in.KD, out.KP, out.KI, out.KD, out.KDiv)
}

func writeImage(path string, img []byte) error {
	if path == "-" {
		return eeprom.WriteHex(os.Stdout, img)
	}
	var buf bytes.Buffer
	if err := eeprom.WriteHex(&buf, img); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func upload(device string, baud int, img []byte) error {
	cfg := serial.DefaultConfig(device)
	cfg.Baud = baud

	port, err := serial.Open(cfg)
	if err != nil {
		return err
	}
	defer port.Close()

	return serial.Upload(port, img, func(line string) {
		fmt.Fprintln(os.Stderr, "  "+line)
	})
}

func decodeImage(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	img, err := eeprom.ReadHex(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	cfg, err := eeprom.Decode(img)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	for _, axis := range []struct {
		name string
		p    eeprom.PIDParams
	}{{"roll", cfg.Roll}, {"pitch", cfg.Pitch}, {"yaw", cfg.Yaw}} {
		div := float64(axis.p.KDiv)
		fmt.Printf("%-5s kp %d ki %d kd %d / %d (%.4f %.4f %.4f) u %d/%d\n",
			axis.name, axis.p.KP, axis.p.KI, axis.p.KD, axis.p.KDiv,
			float64(axis.p.KP)/div, float64(axis.p.KI)/div, float64(axis.p.KD)/div,
			axis.p.UMul, axis.p.UDiv)
	}
	fmt.Printf("esc divisor %d\n", cfg.ESCDivisor)
	return nil
}
