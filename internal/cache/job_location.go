package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const (
	openJobsGeoKey = "jobs:open:locations"
	nearbyLimit    = 100
)

type JobWithDistance struct {
	JobID    string
	Distance float64
}

// JobLocationCache indexes open jobs by coordinates for radius search.
type JobLocationCache interface {
	AddJob(ctx context.Context, jobID string, lat, lng float64) error
	RemoveJob(ctx context.Context, jobID string) error
	GetNearbyJobs(ctx context.Context, lat, lng, radiusKm float64) ([]JobWithDistance, error)
}

type jobLocationCache struct {
	redis *redis.Client
}

func NewJobLocationCache(redisClient *redis.Client) JobLocationCache {
	return &jobLocationCache{redis: redisClient}
}

func (c *jobLocationCache) AddJob(ctx context.Context, jobID string, lat, lng float64) error {
	return c.redis.GeoAdd(ctx, openJobsGeoKey, &redis.GeoLocation{
		Name:      jobID,
		Longitude: lng,
		Latitude:  lat,
	}).Err()
}

func (c *jobLocationCache) RemoveJob(ctx context.Context, jobID string) error {
	return c.redis.ZRem(ctx, openJobsGeoKey, jobID).Err()
}

func (c *jobLocationCache) GetNearbyJobs(ctx context.Context, lat, lng, radiusKm float64) ([]JobWithDistance, error) {
	locations, err := c.redis.GeoRadius(ctx, openJobsGeoKey, lng, lat, &redis.GeoRadiusQuery{
		Radius:   radiusKm,
		Unit:     "km",
		WithDist: true,
		Count:    nearbyLimit,
		Sort:     "ASC",
	}).Result()
	if err != nil {
		return nil, err
	}

	result := make([]JobWithDistance, 0, len(locations))
	for _, loc := range locations {
		result = append(result, JobWithDistance{
			JobID:    loc.Name,
			Distance: loc.Dist,
		})
	}
	return result, nil
}
