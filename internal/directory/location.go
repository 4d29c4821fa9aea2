package directory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/redis/go-redis/v9"
)

const earthRadiusKm = 6371.0

// GeoHit is one result of a radius search.
type GeoHit struct {
	VendorID   string
	DistanceKm float64
}

// LocationIndex answers radius queries over vendors' live locations.
type LocationIndex interface {
	Set(ctx context.Context, vendorID string, lat, long float64) error
	// Nearby returns vendors within radiusKm of the point, nearest first.
	Nearby(ctx context.Context, lat, long, radiusKm float64) ([]GeoHit, error)
}

type redisLocationIndex struct {
	client *redis.Client
	key    string
}

// NewRedisLocationIndex stores locations in a Redis GEO set under key.
func NewRedisLocationIndex(client *redis.Client, key string) LocationIndex {
	return &redisLocationIndex{client: client, key: key}
}

func (i *redisLocationIndex) Set(ctx context.Context, vendorID string, lat, long float64) error {
	err := i.client.GeoAdd(ctx, i.key, &redis.GeoLocation{
		Name:      vendorID,
		Latitude:  lat,
		Longitude: long,
	}).Err()
	if err != nil {
		return fmt.Errorf("geoadd vendor %s failed: %w", vendorID, err)
	}
	return nil
}

func (i *redisLocationIndex) Nearby(ctx context.Context, lat, long, radiusKm float64) ([]GeoHit, error) {
	locs, err := i.client.GeoSearchLocation(ctx, i.key, &redis.GeoSearchLocationQuery{
		GeoSearchQuery: redis.GeoSearchQuery{
			Latitude:   lat,
			Longitude:  long,
			Radius:     radiusKm,
			RadiusUnit: "km",
			Sort:       "ASC",
		},
		WithDist: true,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("geosearch failed: %w", err)
	}

	hits := make([]GeoHit, 0, len(locs))
	for _, l := range locs {
		hits = append(hits, GeoHit{VendorID: l.Name, DistanceKm: l.Dist})
	}
	return hits, nil
}

type memoryLocationIndex struct {
	mu     sync.RWMutex
	points map[string][2]float64
}

// NewMemoryLocationIndex keeps locations in process and measures great-circle distance.
func NewMemoryLocationIndex() LocationIndex {
	return &memoryLocationIndex{points: make(map[string][2]float64)}
}

func (i *memoryLocationIndex) Set(_ context.Context, vendorID string, lat, long float64) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.points[vendorID] = [2]float64{lat, long}
	return nil
}

func (i *memoryLocationIndex) Nearby(_ context.Context, lat, long, radiusKm float64) ([]GeoHit, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	hits := []GeoHit{}
	for id, p := range i.points {
		d := haversineKm(lat, long, p[0], p[1])
		if d <= radiusKm {
			hits = append(hits, GeoHit{VendorID: id, DistanceKm: d})
		}
	}
	sort.Slice(hits, func(a, b int) bool {
		if hits[a].DistanceKm != hits[b].DistanceKm {
			return hits[a].DistanceKm < hits[b].DistanceKm
		}
		return hits[a].VendorID < hits[b].VendorID
	})
	return hits, nil
}

func haversineKm(lat1, long1, lat2, long2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLong := (long2 - long1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLong/2)*math.Sin(dLong/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}
