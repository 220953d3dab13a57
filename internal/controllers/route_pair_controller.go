package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shuttle_admin/internal/services"
)

type RoutePairController struct {
	Pairs *services.RoutePairService
}

// ReconcileRoutePairs brings route pairs in line with the active stops.
func (rc *RoutePairController) ReconcileRoutePairs(c *gin.Context) {
	res, err := rc.Pairs.Reconcile(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"route_pairs": res})
}

func (rc *RoutePairController) ListRoutePairs(c *gin.Context) {
	pairs, err := rc.Pairs.ListActive(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": pairs})
}
