package led

import "testing"

func TestTemplateResolver(t *testing.T) {
	r := TemplateResolver{
		BlueTemplate:   "/sys/class/leds/port%d_led:blue",
		YellowTemplate: "/sys/class/leds/port%d_led:yellow",
		Offset:         1,
	}

	got, err := r.Resolve(0)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	want := Mapping{
		ID:         0,
		BluePath:   "/sys/class/leds/port1_led:blue",
		YellowPath: "/sys/class/leds/port1_led:yellow",
	}
	if got != want {
		t.Errorf("Resolve(0) = %+v, want %+v", got, want)
	}

	if _, err := (TemplateResolver{BlueTemplate: "x%d"}).Resolve(0); !IsCode(err, ErrCodeConfig) {
		t.Errorf("Resolve() without yellow template error = %v, want %s", err, ErrCodeConfig)
	}
}

func TestStaticResolver(t *testing.T) {
	r := NewStaticResolver([]Mapping{
		{ID: 2, BluePath: "/b2", YellowPath: "/y2"},
		{ID: 5, BluePath: "/b5", YellowPath: "/y5"},
	})

	got, err := r.Resolve(5)
	if err != nil {
		t.Fatalf("Resolve(5) error: %v", err)
	}
	if got.BluePath != "/b5" {
		t.Errorf("Resolve(5).BluePath = %s, want /b5", got.BluePath)
	}

	if _, err := r.Resolve(3); !IsCode(err, ErrCodeNotFound) {
		t.Errorf("Resolve(3) error = %v, want %s", err, ErrCodeNotFound)
	}
}

func TestResolveRange(t *testing.T) {
	mappings, err := ResolveRange(TemplateResolver{BlueTemplate: "/b%d", YellowTemplate: "/y%d"}, 3)
	if err != nil {
		t.Fatalf("ResolveRange() error: %v", err)
	}
	if len(mappings) != 3 {
		t.Fatalf("len = %d, want 3", len(mappings))
	}
	if mappings[2].YellowPath != "/y2" {
		t.Errorf("mappings[2].YellowPath = %s, want /y2", mappings[2].YellowPath)
	}

	if _, err := ResolveRange(StaticResolver{}, 1); err == nil {
		t.Error("ResolveRange() over empty static table should fail")
	}
}
