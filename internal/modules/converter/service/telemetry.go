package service

import (
	"context"

	"thermogauge/internal/modules/converter/types"
	"thermogauge/internal/mqtt"
	"thermogauge/internal/temperature"
)

// HandleTelemetry converts the temperature carried by a station message.
// Messages without a temperature are ignored.
func (s *Service) HandleTelemetry(ctx context.Context, t mqtt.Telemetry) error {
	if t.Temperature == nil {
		s.logger.Debug("telemetry without temperature ignored", "station_id", t.StationID)
		return nil
	}

	// sensors report more precision than the input format accepts
	input := temperature.Format(temperature.Round(*t.Temperature, temperature.MaxDecimals))

	_, err := s.Convert(ctx, types.Request{
		Input:     input,
		Source:    types.SourceMQTT,
		StationID: t.StationID,
	})
	return err
}

// Register attaches the service to a telemetry subscriber.
func (s *Service) Register(subscriber *mqtt.Subscriber) {
	subscriber.SetHandler(s.HandleTelemetry)
}
