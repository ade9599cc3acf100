// Package shared holds helpers used by more than one package of the chart
// service. It carries no domain logic.
//
// The testutil subpackage provides a capturing slog handler and small CSV
// fixtures for handler and service tests:
//
//	logger, logs := testutil.NewTestLogger(t)
//	svc := services.NewAnalysisService(renderer, nil, cfg.Upload, cfg.Render, logger)
//	...
//	assert.True(t, logs.ContainsMessage("analysis completed"))
package shared
