package factory

import (
	"errors"
	"testing"
	"time"
)

type sample struct {
	A     int
	Every time.Duration
}

type sampleConf struct {
	A     int           `json:"a"`
	Every time.Duration `json:"every"`
}

func newSample(conf map[string]any) (*sample, error) {
	var c sampleConf
	if err := Decode(conf, &c); err != nil {
		return nil, err
	}
	return &sample{A: c.A, Every: c.Every}, nil
}

// Test registry registration and instantiation using Decode.
func TestRegistry_Create(t *testing.T) {
	reg := NewRegistry[*sample]()
	if err := reg.Register("s", newSample); err != nil {
		t.Fatalf("register: %v", err)
	}
	inst, err := reg.Create(ModuleConfig{Type: "s", Conf: map[string]any{"a": "3", "every": "5s"}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if inst.A != 3 || inst.Every != 5*time.Second {
		t.Fatalf("unexpected instance %+v", inst)
	}
	if names := reg.Names(); len(names) != 1 || names[0] != "s" {
		t.Fatalf("unexpected names %v", names)
	}
}

// Test duplicate registration and unknown type errors.
func TestRegistry_Errors(t *testing.T) {
	reg := NewRegistry[int]()
	if err := reg.Register("x", func(map[string]any) (int, error) { return 1, nil }); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.Register("x", func(map[string]any) (int, error) { return 2, nil }); err == nil {
		t.Fatal("expected duplicate error")
	}
	if err := reg.Register("nil", nil); err == nil {
		t.Fatal("expected nil factory error")
	}
	if _, err := reg.Create(ModuleConfig{Type: "y"}); !errors.Is(err, ErrUnknownModule) {
		t.Fatalf("expected ErrUnknownModule got %v", err)
	}
}

func TestRegistry_FactoryError(t *testing.T) {
	boom := errors.New("boom")
	reg := NewRegistry[int]()
	_ = reg.Register("bad", func(map[string]any) (int, error) { return 0, boom })
	if _, err := reg.Create(ModuleConfig{Type: "bad"}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped factory error got %v", err)
	}
}
