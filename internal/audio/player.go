// ABOUTME: Sound playback through miniaudio (malgo) with decoders for WAV, Ogg Vorbis, MP3 and AIFF.
// ABOUTME: Files are decoded fully to 16-bit PCM, scaled by volume, then streamed to the output device.
package audio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gen2brain/malgo"
	"github.com/go-audio/aiff"
	"github.com/go-audio/audio"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/vorbis"
	"github.com/gopxl/beep/wav"
)

// ErrUnsupportedFormat is returned for files no decoder handles.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

func discardLog(string) {}

// Device describes a playback device.
type Device struct {
	Name      string
	IsDefault bool
}

// ListDevices returns the playback devices known to the audio backend.
func ListDevices() ([]Device, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, discardLog)
	if err != nil {
		return nil, fmt.Errorf("failed to init audio context: %w", err)
	}
	defer func() {
		_ = ctx.Uninit()
		ctx.Free()
	}()

	infos, err := ctx.Devices(malgo.Playback)
	if err != nil {
		return nil, fmt.Errorf("failed to list playback devices: %w", err)
	}

	devices := make([]Device, 0, len(infos))
	for _, info := range infos {
		devices = append(devices, Device{
			Name:      info.Name(),
			IsDefault: info.IsDefault != 0,
		})
	}
	return devices, nil
}

// Player plays sound files on one output device. Play calls are serialized.
type Player struct {
	ctx        *malgo.AllocatedContext
	deviceName string
	deviceID   *malgo.DeviceID
	volume     float64
	mu         sync.Mutex
}

// NewPlayer opens the audio backend. An empty deviceName selects the system default.
func NewPlayer(deviceName string, volume float64) (*Player, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, discardLog)
	if err != nil {
		return nil, fmt.Errorf("failed to init audio context: %w", err)
	}

	p := &Player{
		ctx:        ctx,
		deviceName: deviceName,
		volume:     clampVolume(volume),
	}

	if deviceName != "" {
		id, err := findDevice(ctx, deviceName)
		if err != nil {
			_ = ctx.Uninit()
			ctx.Free()
			return nil, err
		}
		p.deviceID = id
	}

	return p, nil
}

func findDevice(ctx *malgo.AllocatedContext, name string) (*malgo.DeviceID, error) {
	infos, err := ctx.Devices(malgo.Playback)
	if err != nil {
		return nil, fmt.Errorf("failed to list playback devices: %w", err)
	}
	for _, info := range infos {
		if info.Name() == name {
			id := info.ID
			return &id, nil
		}
	}
	return nil, fmt.Errorf("audio device not found: %s", name)
}

func clampVolume(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Play decodes path and blocks until playback finishes.
func (p *Player) Play(path string) error {
	clip, err := decodeFile(path)
	if err != nil {
		return err
	}
	clip.scale(p.volume)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ctx == nil {
		return errors.New("audio player is closed")
	}
	return p.play(clip)
}

func (p *Player) play(clip *pcm) error {
	cfg := malgo.DefaultDeviceConfig(malgo.Playback)
	cfg.Playback.Format = malgo.FormatS16
	cfg.Playback.Channels = uint32(clip.channels)
	cfg.SampleRate = uint32(clip.sampleRate)
	if p.deviceID != nil {
		cfg.Playback.DeviceID = p.deviceID.Pointer()
	}

	data := samplesToBytes(clip.samples)
	var (
		offset   int
		finished = make(chan struct{})
		once     sync.Once
	)

	callbacks := malgo.DeviceCallbacks{
		Data: func(out, _ []byte, _ uint32) {
			n := copy(out, data[offset:])
			offset += n
			for i := n; i < len(out); i++ {
				out[i] = 0
			}
			if offset >= len(data) {
				once.Do(func() { close(finished) })
			}
		},
	}

	device, err := malgo.InitDevice(p.ctx.Context, cfg, callbacks)
	if err != nil {
		return fmt.Errorf("failed to open playback device: %w", err)
	}
	defer device.Uninit()

	if err := device.Start(); err != nil {
		return fmt.Errorf("failed to start playback: %w", err)
	}

	select {
	case <-finished:
		// let the last period drain
		time.Sleep(50 * time.Millisecond)
	case <-time.After(clip.duration() + 2*time.Second):
		return errors.New("playback timed out")
	}

	return device.Stop()
}

// Close releases the audio backend. Safe to call more than once.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ctx == nil {
		return nil
	}
	err := p.ctx.Uninit()
	p.ctx.Free()
	p.ctx = nil
	return err
}

// pcm is interleaved signed 16-bit audio.
type pcm struct {
	samples    []int16
	channels   int
	sampleRate int
}

func (c *pcm) duration() time.Duration {
	if c.channels == 0 || c.sampleRate == 0 {
		return 0
	}
	frames := len(c.samples) / c.channels
	return time.Duration(frames) * time.Second / time.Duration(c.sampleRate)
}

func (c *pcm) scale(volume float64) {
	if volume >= 1 {
		return
	}
	for i, s := range c.samples {
		c.samples[i] = int16(float64(s) * volume)
	}
}

func decodeFile(path string) (*pcm, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".aiff", ".aif":
		return decodeAIFF(path)
	case ".wav", ".mp3", ".ogg", ".oga":
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sound file: %w", err)
	}

	var (
		stream beep.StreamSeekCloser
		format beep.Format
	)
	switch ext {
	case ".wav":
		stream, format, err = wav.Decode(f)
	case ".mp3":
		stream, format, err = mp3.Decode(f)
	default:
		stream, format, err = vorbis.Decode(f)
	}
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}
	defer stream.Close()

	return streamToPCM(stream, format), nil
}

// streamToPCM drains a beep stream into stereo 16-bit PCM.
func streamToPCM(stream beep.Streamer, format beep.Format) *pcm {
	clip := &pcm{channels: 2, sampleRate: int(format.SampleRate)}
	buf := make([][2]float64, 512)
	for {
		n, ok := stream.Stream(buf)
		for _, frame := range buf[:n] {
			clip.samples = append(clip.samples, floatToInt16(frame[0]), floatToInt16(frame[1]))
		}
		if !ok {
			break
		}
	}
	return clip
}

func floatToInt16(v float64) int16 {
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	return int16(v * 32767)
}

func decodeAIFF(path string) (*pcm, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sound file: %w", err)
	}
	defer f.Close()

	dec := aiff.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid AIFF file: %s", filepath.Base(path))
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}

	return &pcm{
		samples:    intBufferToSamples(buf, int(dec.BitDepth)),
		channels:   buf.Format.NumChannels,
		sampleRate: buf.Format.SampleRate,
	}, nil
}

// intBufferToSamples narrows integer PCM of the given bit depth to 16 bits.
func intBufferToSamples(buf *audio.IntBuffer, bitDepth int) []int16 {
	samples := make([]int16, len(buf.Data))
	for i, v := range buf.Data {
		switch bitDepth {
		case 8:
			samples[i] = int16(v << 8)
		case 24:
			samples[i] = int16(v >> 8)
		case 32:
			samples[i] = int16(v >> 16)
		default:
			samples[i] = int16(v)
		}
	}
	return samples
}

// samplesToBytes encodes samples little-endian.
func samplesToBytes(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		out[i*2] = byte(s)
		out[i*2+1] = byte(uint16(s) >> 8)
	}
	return out
}
