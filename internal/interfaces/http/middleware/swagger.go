package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/erp/stockscan/internal/infrastructure/logger"
	"github.com/erp/stockscan/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SwaggerConfig guards the API documentation endpoint
type SwaggerConfig struct {
	Enabled     bool
	RequireAuth bool     // run the auth middleware before serving docs
	AllowedIPs  []string // single IPs or CIDR ranges, empty allows all
}

// SwaggerProtection serves the documentation only when enabled, optionally
// restricted to an IP allow list and to authenticated callers. Entries of
// AllowedIPs that parse as neither an IP nor a CIDR are ignored.
func SwaggerProtection(cfg SwaggerConfig, authMiddleware gin.HandlerFunc) gin.HandlerFunc {
	allow := parseIPAllowList(cfg.AllowedIPs)

	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.AbortWithStatusJSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeNotFound,
				"API documentation is not available",
				GetRequestID(c),
			))
			return
		}

		if len(cfg.AllowedIPs) > 0 && !allow.contains(net.ParseIP(c.ClientIP())) {
			logger.GetGinLogger(c).Warn("swagger access denied", zap.String("client_ip", c.ClientIP()))
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeForbidden,
				"Access to API documentation is restricted",
				GetRequestID(c),
			))
			return
		}

		if cfg.RequireAuth && authMiddleware != nil {
			authMiddleware(c)
			if c.IsAborted() {
				return
			}
		}

		c.Next()
	}
}

type ipAllowList struct {
	ips  []net.IP
	nets []*net.IPNet
}

func parseIPAllowList(entries []string) ipAllowList {
	var list ipAllowList
	for _, entry := range entries {
		if strings.Contains(entry, "/") {
			if _, network, err := net.ParseCIDR(entry); err == nil {
				list.nets = append(list.nets, network)
			}
			continue
		}
		if ip := net.ParseIP(entry); ip != nil {
			list.ips = append(list.ips, ip)
		}
	}
	return list
}

func (l ipAllowList) contains(ip net.IP) bool {
	if ip == nil {
		return false
	}
	for _, allowed := range l.ips {
		if allowed.Equal(ip) {
			return true
		}
	}
	for _, network := range l.nets {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}
