package services

import "certification-portal-api/models"

// DefaultMaxFreeRevisions is the free send-back quota applied when an
// application is created without an explicit override.
const DefaultMaxFreeRevisions = 2

// IsFreeRevision reports whether the next revision request is still inside
// the free quota. The check runs against the count before the increment, so
// with a quota of 2 the first and second send-backs are free and the third
// requires the revision fee.
func IsFreeRevision(app models.Application) bool {
	return app.RevisionCountCurrent < app.MaxFreeRevisions
}

// OnRevisionRequested returns a copy of the application with the revision
// count incremented by exactly one. The count never decreases.
func OnRevisionRequested(app models.Application) models.Application {
	app.RevisionCountCurrent++
	return app
}
