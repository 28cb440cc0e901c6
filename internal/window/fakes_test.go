package window

import (
	"context"
	"fmt"
	"sync"
)

type fakeQuery struct {
	byClass map[string][]Handle
	byName  map[string][]Handle
	titles  map[Handle]string
	err     error

	mu    sync.Mutex
	calls []string
}

func (f *fakeQuery) record(s string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, s)
}

func (f *fakeQuery) SearchClass(ctx context.Context, class string) ([]Handle, error) {
	f.record("class:" + class)
	if f.err != nil {
		return nil, f.err
	}
	return f.byClass[class], nil
}

func (f *fakeQuery) SearchName(ctx context.Context, name string) ([]Handle, error) {
	f.record("name:" + name)
	if f.err != nil {
		return nil, f.err
	}
	return f.byName[name], nil
}

func (f *fakeQuery) Title(ctx context.Context, h Handle) (string, error) {
	title, ok := f.titles[h]
	if !ok {
		return "", fmt.Errorf("BadWindow %s", h)
	}
	return title, nil
}

type fakeDisplay struct {
	valid   map[Handle]bool
	failOn  string
	clock   uint32
	timeErr error
	steps   []string
	stamps  []uint32
	closed  bool
}

func (d *fakeDisplay) do(name string) error {
	d.steps = append(d.steps, name)
	if name == d.failOn {
		return fmt.Errorf("%s refused", name)
	}
	return nil
}

func (d *fakeDisplay) Validate(h Handle) error {
	if !d.valid[h] {
		return fmt.Errorf("%w: %s", ErrBadHandle, h)
	}
	return nil
}

func (d *fakeDisplay) Deminimize(h Handle) error { return d.do("deminimize") }

// ServerTime advances the fake clock by 10ms per read.
func (d *fakeDisplay) ServerTime() (uint32, error) {
	if d.timeErr != nil {
		return 0, d.timeErr
	}
	d.clock += 10
	return d.clock, nil
}

func (d *fakeDisplay) RequestActivate(h Handle, ts uint32) error {
	d.stamps = append(d.stamps, ts)
	return d.do("request")
}

func (d *fakeDisplay) SetActive(h Handle) error { return d.do("setactive") }
func (d *fakeDisplay) Map(h Handle) error       { return d.do("map") }
func (d *fakeDisplay) Raise(h Handle) error     { return d.do("raise") }

func (d *fakeDisplay) Focus(h Handle) error { return d.do("focus") }

func (d *fakeDisplay) Close() { d.closed = true }
