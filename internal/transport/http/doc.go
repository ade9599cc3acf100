// Package http exposes the analysis pipeline over HTTP.
//
// Handlers stay thin: they read the form, validate it against the request
// contracts in pkg/contracts/api/v1, call a service and write either JSON, a
// PNG, or a problem response through the shared ErrorHandler.
//
// All analysis endpoints accept POST with multipart/form-data. The word cloud
// endpoints also accept application/x-www-form-urlencoded with a text field.
// Form fields are read in the order the client sent them, so generic filter
// predicates (gt:<Column>, in:<Column>) are applied in form-key order.
package http
