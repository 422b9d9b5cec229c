package models

// Health check models
type HealthData struct {
	Status     string            `json:"status" example:"ok" enum:"ok,degraded" doc:"Service status"`
	Message    string            `json:"message" example:"API is healthy" doc:"Status message"`
	LEDs       int               `json:"leds" example:"48" doc:"Number of LEDs under management"`
	Components []ComponentHealth `json:"components,omitempty" doc:"Optional subsystems such as the NATS bridge"`
}

type ComponentHealth struct {
	Name   string `json:"name" example:"nats_bridge" doc:"Component name"`
	OK     bool   `json:"ok" doc:"Whether the component is working"`
	Detail string `json:"detail,omitempty" example:"nats://127.0.0.1:4222" doc:"Component detail"`
}

type HealthResponse struct {
	Body HealthData
}

// Version models
type VersionData struct {
	Version   string `json:"version" example:"dev" doc:"Application version"`
	GitCommit string `json:"git_commit" example:"abc1234" doc:"Git commit hash"`
	BuildDate string `json:"build_date" example:"2025-01-27T10:30:00Z" doc:"Build timestamp"`
	GoVersion string `json:"go_version" example:"go1.24.0" doc:"Go compiler version"`
	Platform  string `json:"platform" example:"linux/arm64" doc:"Target platform"`
}

type VersionResponse struct {
	Body VersionData
}

// LED models
type LEDData struct {
	ID            int    `json:"id" example:"0" doc:"LED index"`
	Color         string `json:"color" example:"yellow" enum:"off,blue,yellow" doc:"Current color"`
	Blink         string `json:"blink" example:"slow" enum:"off,slow,fast" doc:"Current blink rate"`
	BlinkDegraded bool   `json:"blink_degraded" doc:"Blink attributes could not be written; the LED is lit solid"`
	BluePath      string `json:"blue_path" example:"/sys/class/leds/port1_led:blue" doc:"sysfs directory of the blue channel"`
	YellowPath    string `json:"yellow_path" example:"/sys/class/leds/port1_led:yellow" doc:"sysfs directory of the yellow channel"`
}

type LEDListData struct {
	LEDs  []LEDData `json:"leds" doc:"Managed LEDs ordered by index"`
	Count int       `json:"count" example:"48" doc:"Number of managed LEDs"`
}

type LEDListResponse struct {
	Body LEDListData
}

type LEDResponse struct {
	Body LEDData
}

type LEDPathParam struct {
	ID int `path:"id" minimum:"0" example:"0" doc:"LED index"`
}

type LEDStateRequestData struct {
	Color string `json:"color" enum:"off,blue,yellow" example:"yellow" doc:"Requested color"`
	Blink string `json:"blink,omitempty" enum:"off,slow,fast,solid" example:"slow" doc:"Requested blink rate; omitted means solid"`
}

type LEDStateRequest struct {
	ID   int `path:"id" minimum:"0" example:"0" doc:"LED index"`
	Body LEDStateRequestData
}

// SSE models
type ConnectedEvent struct {
	Message   string `json:"message" example:"SSE connection established"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z"`
}
