package service

import (
	"context"

	model "github.com/okian/pitwall/internal/domain/model"
)

// noSource stands in for an unconfigured collaborator.
type noSource struct{}

func (noSource) SeasonRaces(context.Context, int) ([]model.Race, error) { return nil, nil }

func (noSource) DriverStandings(context.Context, int) ([]model.StandingEntry, error) {
	return nil, nil
}

func (noSource) ConstructorStandings(context.Context, int) ([]model.StandingEntry, error) {
	return nil, nil
}

func (noSource) RaceResults(context.Context, int, int) (*model.Race, error) { return nil, nil }

func (noSource) LatestDrivers(context.Context, int) ([]model.Driver, error) { return nil, nil }

func (noSource) Sessions(context.Context, int, model.Race) ([]model.Session, error) {
	return nil, nil
}
