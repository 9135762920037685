// Package logger expone un logger Zap único con scoping por contexto.
//
// Inicialización (una vez en main.go):
//
//	logger.Init(logger.Config{Env: cfg.Environment, Level: cfg.Log.Level, ServiceName: "smart-survey"})
//	defer logger.Sync()
//
// En controllers/services:
//
//	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("Survey.Save"))
//	log.Info("survey saved", logger.SurveyID(id))
package logger
