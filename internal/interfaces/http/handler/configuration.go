package handler

import (
	appscan "github.com/erp/stockscan/internal/application/scanning"
	"github.com/erp/stockscan/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// ConfigurationHandler reads and updates the scanner configuration
type ConfigurationHandler struct {
	BaseHandler
	service *appscan.ScanService
}

// NewConfigurationHandler creates a new ConfigurationHandler
func NewConfigurationHandler(service *appscan.ScanService) *ConfigurationHandler {
	return &ConfigurationHandler{service: service}
}

// Get returns the lot creation policy.
//
//	@ID				getScannerConfiguration
//	@Summary		Get scanner configuration
//	@Tags			configuration
//	@Produce		json
//	@Success		200	{object}	APIResponse[appscan.ConfigurationResponse]
//	@Failure		401	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/scanner/configuration [get]
func (h *ConfigurationHandler) Get(c *gin.Context) {
	cfg, err := h.service.GetConfiguration(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cfg)
}

// Update changes the lot creation policy. Scans already in flight keep the
// policy they read.
//
//	@ID				updateScannerConfiguration
//	@Summary		Update scanner configuration
//	@Description	Sets the lot creation policy to search-create or always
//	@Tags			configuration
//	@Accept			json
//	@Produce		json
//	@Param			request	body		appscan.UpdateConfigurationRequest	true	"New policy"
//	@Success		200		{object}	APIResponse[appscan.ConfigurationResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		403		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/scanner/configuration [put]
func (h *ConfigurationHandler) Update(c *gin.Context) {
	var req appscan.UpdateConfigurationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(c, err)
		return
	}
	cfg, err := h.service.UpdateConfiguration(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cfg)
}
