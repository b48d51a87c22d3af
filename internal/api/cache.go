package api

import (
	"net/http" // HTTP status codes
	"strconv"  // Query parsing

	"yield_wallet/internal/store" // Health check
	"yield_wallet/internal/utils" // Cache helpers

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
)

// RedisKey is the context key under which the router stores the Redis client
const RedisKey = "redisClient"

func redisFrom(c *gin.Context) *redis.Client {
	v, ok := c.Get(RedisKey)
	if !ok {
		return nil
	}
	rdb, _ := v.(*redis.Client)
	return rdb
}

// invalidate drops the cached profiles of userIDs and every cached admin user list page
func invalidate(c *gin.Context, userIDs ...string) {
	rdb := redisFrom(c)
	if rdb == nil {
		return // Caching disabled
	}
	ctx := c.Request.Context()
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, utils.UserCacheKey(id))
	}
	err := utils.DeleteCache(ctx, rdb, keys...)
	if err == nil {
		err = utils.DeleteCachePrefix(ctx, rdb, utils.AdminUsersCachePrefix)
	}
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"user_ids": userIDs,     // Users whose cache should have been dropped
			"error":    err.Error(), // Redis failure
		}).Warn("Cache invalidation failed")
	}
}

// pagination reads page and page_size with the same defaults and limits everywhere
func pagination(c *gin.Context) (page, pageSize int) {
	page = 1      // Default page number
	pageSize = 20 // Default page size
	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v // Set page if valid
		}
	}
	// Check and set page size within limits
	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v // Set page size
		}
	}
	return page, pageSize
}

// HealthHandler reports whether the store is reachable
func HealthHandler(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := st.Ping(c.Request.Context()); err != nil {
			logrus.WithField("error", err.Error()).Error("Health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
