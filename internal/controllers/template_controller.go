package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shuttle_admin/internal/services"
)

type TemplateController struct {
	Propagator *services.TemplatePropagator
}

// updateTimingInput is the PATCH body; only departure_time is required.
type updateTimingInput struct {
	DepartureTime string   `json:"departure_time" binding:"required"`
	ArrivalTime   *string  `json:"arrival_time"`
	Description   *string  `json:"description"`
	Price         *float64 `json:"price"`
	PricePackage  *float64 `json:"price_package"`
	IsSale        *bool    `json:"is_sale"`
	IsRound       *bool    `json:"is_round"`
}

func (tc *TemplateController) GetTemplate(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	view, err := tc.Propagator.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"template": view})
}

// UpdateTemplateTiming edits one template and propagates its times to
// related templates. Only the edited template is returned.
func (tc *TemplateController) UpdateTemplateTiming(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var input updateTimingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	view, err := tc.Propagator.ApplyTimeEdit(c.Request.Context(), id, services.TimeEdit{
		DepartureTime: input.DepartureTime,
		ArrivalTime:   input.ArrivalTime,
		Description:   input.Description,
		Price:         input.Price,
		PricePackage:  input.PricePackage,
		IsSale:        input.IsSale,
		IsRound:       input.IsRound,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"template": view})
}
