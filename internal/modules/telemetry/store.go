// README: Telemetry store backed by Redis GEO for live positions plus Postgres
// snapshots for history.
package telemetry

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"convoy/internal/types"
)

const (
	vehicleGeoKey  = "telemetry:vehicles"
	publishChannel = "telemetry:updates"
)

type Store struct {
	db    *pgxpool.Pool
	redis *redis.Client
}

func NewStore(db *pgxpool.Pool, rdb *redis.Client) *Store {
	return &Store{db: db, redis: rdb}
}

func (s *Store) SetGeo(ctx context.Context, id types.ID, pos types.Point) error {
	return s.redis.GeoAdd(ctx, vehicleGeoKey, &redis.GeoLocation{
		Name:      string(id),
		Longitude: pos.Lng,
		Latitude:  pos.Lat,
	}).Err()
}

// Publish pushes the update to live subscribers (dashboards, map views).
func (s *Store) Publish(ctx context.Context, u Update) error {
	payload, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return s.redis.Publish(ctx, publishChannel, payload).Err()
}

func (s *Store) AppendSnapshot(ctx context.Context, snap Snapshot) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO telemetry_snapshots (vehicle_id, lat, lng, speed_kph, recorded_at)
		VALUES ($1, $2, $3, $4, $5)`,
		string(snap.VehicleID), snap.Position.Lat, snap.Position.Lng, snap.SpeedKph, snap.RecordedAt,
	)
	return err
}

// Nearby lists vehicles within radiusKm of a point, closest first.
func (s *Store) Nearby(ctx context.Context, p types.Point, radiusKm float64) ([]NearbyVehicle, error) {
	results, err := s.redis.GeoSearchLocation(ctx, vehicleGeoKey, &redis.GeoSearchLocationQuery{
		GeoSearchQuery: redis.GeoSearchQuery{
			Longitude:  p.Lng,
			Latitude:   p.Lat,
			Radius:     radiusKm,
			RadiusUnit: "km",
			Sort:       "ASC",
		},
		WithDist: true,
	}).Result()
	if err != nil {
		return nil, err
	}
	out := make([]NearbyVehicle, len(results))
	for i, r := range results {
		out[i] = NearbyVehicle{VehicleID: types.ID(r.Name), DistanceKm: r.Dist}
	}
	return out, nil
}

func (s *Store) ListSnapshots(ctx context.Context, vehicleID types.ID, limit int) ([]Snapshot, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, vehicle_id, lat, lng, speed_kph, recorded_at
		FROM telemetry_snapshots
		WHERE vehicle_id = $1
		ORDER BY recorded_at DESC
		LIMIT $2`, string(vehicleID), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var snap Snapshot
		if err := rows.Scan(&snap.ID, &snap.VehicleID, &snap.Position.Lat,
			&snap.Position.Lng, &snap.SpeedKph, &snap.RecordedAt); err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}
