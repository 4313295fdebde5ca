package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/patrik-rangel/hvac-telemetry-api/internal/domain/entities"
	"github.com/patrik-rangel/hvac-telemetry-api/internal/domain/gateways"
)

// DefaultSinkTimeout bounds each insert when no timeout is configured.
const DefaultSinkTimeout = 10 * time.Second

// IngestionResult summarizes one accepted upload.
// A nil record means it could not be extracted; a non-nil *Err means the store rejected it.
type IngestionResult struct {
	DeviceID   string
	Sensor     *entities.SensorRecord
	Command    *entities.CommandRecord
	SensorErr  error
	CommandErr error
	Missing    []string
}

func (r IngestionResult) SensorStored() bool  { return r.Sensor != nil && r.SensorErr == nil }
func (r IngestionResult) CommandStored() bool { return r.Command != nil && r.CommandErr == nil }

type IngestionService struct {
	auth     *Authenticator
	codec    *PayloadCodec
	sensors  gateways.SensorRepository
	commands gateways.CommandRepository
	timeout  time.Duration
}

func NewIngestionService(auth *Authenticator, codec *PayloadCodec, sensors gateways.SensorRepository, commands gateways.CommandRepository, timeout time.Duration) *IngestionService {
	if timeout <= 0 {
		timeout = DefaultSinkTimeout
	}
	return &IngestionService{
		auth:     auth,
		codec:    codec,
		sensors:  sensors,
		commands: commands,
		timeout:  timeout,
	}
}

// Ingest authenticates, decodes and stores the records of one upload.
// It returns entities.ErrUnauthorized or an error matching entities.ErrDecode;
// sink failures are reported in the result, never as an error.
func (s *IngestionService) Ingest(ctx context.Context, token, deviceID, encoded string) (IngestionResult, error) {
	if err := s.auth.Authorize(ctx, token, AdminOrUser); err != nil {
		return IngestionResult{}, err
	}

	payload, err := s.codec.Decode(encoded)
	if err != nil {
		return IngestionResult{}, fmt.Errorf("dispositivo %s: %w", deviceID, err)
	}

	res := IngestionResult{
		DeviceID: deviceID,
		Sensor:   payload.Sensor,
		Command:  payload.Command,
		Missing:  payload.Missing,
	}

	// As duas coleções são independentes: uma falha não impede a outra.
	var wg sync.WaitGroup
	if res.Sensor != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			insertCtx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			res.SensorErr = s.sensors.InsertSensor(insertCtx, *res.Sensor)
		}()
	} else {
		slog.Debug("não foi possível obter todos os dados do sensor", "device_id", deviceID, "missing", payload.Missing)
	}

	if res.Command != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			insertCtx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			res.CommandErr = s.commands.InsertCommand(insertCtx, *res.Command)
		}()
	} else {
		slog.Debug("não foi possível obter os dados do termostato", "device_id", deviceID)
	}
	wg.Wait()

	if res.SensorErr != nil {
		slog.Error("falha ao gravar dados do sensor", "device_id", deviceID, "error", res.SensorErr)
	}
	if res.CommandErr != nil {
		slog.Error("falha ao gravar dados do termostato", "device_id", deviceID, "error", res.CommandErr)
	}

	return res, nil
}
