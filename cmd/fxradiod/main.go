// Command fxradiod is the per-host supervisor: it loads a device
// configuration file, brings up one Frontend plus its channel table
// and status/command loop per configured device, and runs until
// killed or a device goes unresponsive (in which case the process
// exits for an external supervisor to restart, per §7).
package main

import (
	"net"
	"os"
	"runtime"
	"time"

	"github.com/doismellburning/fxradiod/internal/channel"
	"github.com/doismellburning/fxradiod/internal/config"
	"github.com/doismellburning/fxradiod/internal/driver/portaudio"
	"github.com/doismellburning/fxradiod/internal/filter"
	"github.com/doismellburning/fxradiod/internal/frontend"
	"github.com/doismellburning/fxradiod/internal/linear"
	"github.com/doismellburning/fxradiod/internal/radiolog"
	"github.com/doismellburning/fxradiod/internal/rtsched"
	"github.com/doismellburning/fxradiod/internal/status"
)

// defaultSSRC is the channel this supervisor stands up automatically
// on startup, tuned to the front end's own center frequency. Real
// deployments add/remove channels in response to commands; nothing in
// the status/command wire protocol currently does that (§4.7 only
// covers frequency/gain/calibration), so one always-on channel is what
// makes audio actually flow out of a freshly started device.
const defaultSSRC = 1

// audioOutputAddr is the conventional multicast destination for a
// device's demodulated audio, parallel to config.Device's own
// "239.1.2.3:5006" status-group default.
const audioOutputAddr = "239.1.2.3:5004"

func main() {
	log := radiolog.For("main")

	if len(os.Args) < 2 {
		log.Error("usage: fxradiod <config.yaml>")
		os.Exit(1)
	}

	cfg, warnings, err := config.Load(os.Args[1])
	if err != nil {
		log.Error("load config", "err", err)
		os.Exit(1)
	}
	for _, w := range warnings {
		log.Warn(w)
	}

	if len(cfg.Devices) == 0 {
		log.Error("no devices configured")
		os.Exit(1)
	}

	done := make(chan struct{})
	for _, dev := range cfg.Devices {
		dev := dev
		go runDevice(dev, done)
	}
	<-done // first device to exit (liveness loss or fatal setup error) ends the process
}

// runDevice brings up a single device's frontend, channel table,
// reaper, and status/command loops, and blocks until its monitor loop
// decides the device is gone.
func runDevice(dev config.Device, done chan<- struct{}) {
	log := radiolog.For("frontend").With("device", dev.Name)

	fe := frontend.New(frontend.Config{
		SampleRate:   dev.SampRate,
		Calibrate:    dev.Calibrate,
		FilterParams: filter.Params{L: 4096, M: filter.DeriveM(4096, 8)},
		SerialNumber: dev.Serial,
	})

	table := channel.NewTable()
	reaper := channel.NewReaper(table)
	go reaper.Run()
	defer reaper.Stop()

	drv := portaudio.New()
	if err := drv.Setup(fe, map[string]string{"stereo": "true"}); err != nil {
		log.Error("driver setup", "err", err)
		notifyDone(done)
		return
	}
	defer drv.Close()

	startFreq := frontend.ReadTuningFile(dev.Serial)
	if dev.Frequency != 0 {
		startFreq = dev.Frequency
	}
	program := func(f float64) (float64, error) { return drv.Tune(fe, f) }
	if _, err := fe.Tune(startFreq, program); err != nil {
		log.Error("initial tune", "err", err)
		notifyDone(done)
		return
	}

	if err := drv.Start(fe); err != nil {
		log.Error("driver start", "err", err)
		notifyDone(done)
		return
	}

	deviceStop := make(chan struct{})
	defer close(deviceStop)

	if err := startDefaultChannel(fe, table, deviceStop); err != nil {
		log.Error("start default channel", "err", err)
		notifyDone(done)
		return
	}

	groupAddr, err := net.ResolveUDPAddr("udp4", dev.Status)
	if err != nil {
		log.Error("resolve status group", "err", err)
		notifyDone(done)
		return
	}

	conn, err := status.ListenMulticast(groupAddr, nil)
	if err != nil {
		log.Error("listen multicast", "err", err)
		notifyDone(done)
		return
	}
	defer conn.Close()

	// RaiseFIFO affects the calling OS thread, not the goroutine; lock
	// this goroutine to its thread first so the priority sticks.
	runtime.LockOSThread()
	if err := rtsched.RaiseFIFO(10); err != nil {
		log.Warn("real-time scheduling unavailable", "err", err)
	}

	handlers := status.Handlers{
		Calibrate: func(v float64) { log.Info("calibrate", "value", v) },
		RFGain:    func(v float32) { log.Info("rf gain", "value", v) },
		RFAtten:   func(v float32) { log.Info("rf atten", "value", v) },
		Frequency: func(hz float64) (float64, error) {
			return fe.Tune(hz, program)
		},
	}

	buildFrame := func() status.Frame {
		return status.Frame{
			CommandCount:     fe.CommandCount(),
			TimestampNs:      uint64(fe.TimestampNs()),
			Description:      status.DescribeWithTimestamp(dev.Description, time.Now()),
			InputSampRate:    uint32(dev.SampRate),
			MetadataPackets:  fe.StatusEpoch(),
			Calibrate:        dev.Calibrate,
			TunedFreqHz:      fe.CenterFreq(),
			Locked:           fe.TuningLocked(),
			Demod:            status.DemodTypeLinear,
			OutputSampRate:   48000,
			OutputChannels:   1,
			DirectConversion: false,
			BitsPerSample:    16,
		}
	}

	cmdLoop := status.NewCommandLoop(fe, conn, groupAddr, handlers, buildFrame)
	go func() {
		if err := cmdLoop.Run(); err != nil {
			log.Error("command loop", "err", err)
		}
	}()
	defer cmdLoop.Stop()

	monitor := status.NewMonitor(func() bool { return true }, func() {
		log.Error("device liveness lost, exiting for supervisor restart")
		notifyDone(done)
	})
	monitor.Run()
}

// startDefaultChannel brings up the channelizer→demodulator pipeline
// for one always-on channel, tuned to the front end's own center
// frequency (zero offset): it creates the channel in table, slices a
// FilterOutput out of fe.In, and runs a linear.Demodulator against it
// in its own goroutine until deviceStop fires or the channel is freed.
func startDefaultChannel(fe *frontend.Frontend, table *channel.Table, deviceStop <-chan struct{}) error {
	log := radiolog.For("channel").With("ssrc", defaultSSRC)

	ch, err := table.Setup(defaultSSRC)
	if err != nil {
		return err
	}

	const outputRate = 48000.0
	const minIF, maxIF = -6000.0, 6000.0 // a plain SSB/AM-width passband around center
	const beta = 8.0

	sampRate := fe.Config().SampleRate
	n := fe.Config().FilterParams.N()
	olen := int(outputRate / sampRate * float64(n))
	if olen < 64 {
		olen = 64
	}

	fo := filter.NewFilterOutput(fe.In, olen, minIF, maxIF, sampRate, beta)
	fo.Retune(0, sampRate)

	ch.Tuning.FreqHz = fe.CenterFreq()
	ch.Kind = channel.DemodLinear
	ch.Output = channel.OutputConfig{
		SampleRate:  outputRate,
		Channels:    1,
		DigitalGain: 1,
		Headroom:    0.7,
		Destination: audioOutputAddr,
	}

	addr, err := net.ResolveUDPAddr("udp4", audioOutputAddr)
	if err != nil {
		fo.Close()
		return err
	}
	audioConn, err := net.DialUDP("udp4", nil, addr)
	if err != nil {
		fo.Close()
		return err
	}

	demod := linear.NewDemodulator(linear.Config{
		SampleRate: outputRate,
	}, ch, fo, nil, linear.AGCConfig{
		Enabled:          true,
		SampleRate:       outputRate,
		Headroom:         0.7,
		Threshold:        0.02,
		HangTimeSecs:     1,
		RecoveryDBPerSec: 20,
	})

	sink := newPCMSink(audioConn)
	bw := func() float64 { return maxIF - minIF }
	n0 := func() float64 { return ch.Measurements.N0 }

	table.SetCloseHook(defaultSSRC, func() { audioConn.Close() })

	go func() {
		log.Info("demodulator started")
		demod.Run(deviceStop, sink, bw, n0)
		log.Info("demodulator stopped")
	}()

	return nil
}

// notifyDone signals main that this device has exited, without
// blocking and without risking a double-close panic if more than one
// device's shutdown path fires.
func notifyDone(done chan<- struct{}) {
	select {
	case done <- struct{}{}:
	default:
	}
}
