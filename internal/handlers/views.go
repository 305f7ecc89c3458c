package handlers

import (
	"github.com/gin-gonic/gin"

	"farmlyf_back_end/internal/models"
	"farmlyf_back_end/internal/workflow"
)

// ReturnView is a return request with the progress tracker the shop renders.
func ReturnView(r models.ReturnRequest) gin.H {
	return gin.H{
		"return":      r,
		"steps":       workflow.Steps(r.Type),
		"currentStep": workflow.StepIndex(r.Type, r.Status),
		"timeline":    workflow.Timeline(r.Type, r.Status, r.History),
		"terminal":    workflow.IsTerminal(r.Status),
		"next":        workflow.NextStatuses(r.Type, r.Status),
	}
}
