package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/portled/internal/api/models"
	"github.com/smazurov/portled/internal/led"
)

func (s *Server) registerLEDRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-leds",
		Method:      http.MethodGet,
		Path:        "/api/leds",
		Summary:     "List LEDs",
		Description: "Get the current state of every managed LED",
		Tags:        []string{"leds"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(_ context.Context, _ *struct{}) (*models.LEDListResponse, error) {
		statuses := s.leds.List()
		data := make([]models.LEDData, 0, len(statuses))
		for _, st := range statuses {
			data = append(data, toLEDData(st))
		}
		return &models.LEDListResponse{
			Body: models.LEDListData{LEDs: data, Count: len(data)},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-led",
		Method:      http.MethodGet,
		Path:        "/api/leds/{id}",
		Summary:     "Get LED",
		Description: "Get the current state of one LED",
		Tags:        []string{"leds"},
		Errors:      []int{401, 404},
		Security:    withAuth(),
	}, func(_ context.Context, input *models.LEDPathParam) (*models.LEDResponse, error) {
		st, err := s.leds.Get(input.ID)
		if err != nil {
			return nil, toHTTPError(err)
		}
		return &models.LEDResponse{Body: toLEDData(st)}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "set-led",
		Method:      http.MethodPut,
		Path:        "/api/leds/{id}",
		Summary:     "Set LED",
		Description: "Apply a color and blink rate to one LED. Setting the current state is a no-op.",
		Tags:        []string{"leds"},
		Errors:      []int{400, 401, 404, 500},
		Security:    withAuth(),
	}, func(_ context.Context, input *models.LEDStateRequest) (*models.LEDResponse, error) {
		state, err := led.ParseState(input.Body.Color, input.Body.Blink)
		if err != nil {
			return nil, huma.Error400BadRequest("Invalid LED state", err)
		}
		if err := s.leds.Apply(input.ID, state); err != nil {
			return nil, toHTTPError(err)
		}
		st, err := s.leds.Get(input.ID)
		if err != nil {
			return nil, toHTTPError(err)
		}
		return &models.LEDResponse{Body: toLEDData(st)}, nil
	})
}

func toLEDData(st led.Status) models.LEDData {
	return models.LEDData{
		ID:            st.Mapping.ID,
		Color:         st.State.Color.String(),
		Blink:         st.State.Blink.String(),
		BlinkDegraded: st.BlinkDegraded,
		BluePath:      st.Mapping.BluePath,
		YellowPath:    st.Mapping.YellowPath,
	}
}

// toHTTPError maps LED error codes to HTTP status codes.
func toHTTPError(err error) error {
	var ledErr *led.Error
	if !errors.As(err, &ledErr) {
		return huma.Error500InternalServerError("LED operation failed", err)
	}
	switch ledErr.Code {
	case led.ErrCodeNotFound:
		return huma.Error404NotFound(ledErr.Message, err)
	case led.ErrCodeInvalidState, led.ErrCodeConfig:
		return huma.Error400BadRequest(ledErr.Message, err)
	default:
		return huma.Error500InternalServerError(ledErr.Message, err)
	}
}
