/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"bpmn-token-engine/src/core/config"
	"bpmn-token-engine/src/core/logger"
	"bpmn-token-engine/src/core/restapi"
	"bpmn-token-engine/src/host"
	"bpmn-token-engine/src/metrics"
	"bpmn-token-engine/src/process"
	"bpmn-token-engine/src/scripting"
	"bpmn-token-engine/src/storage"
)

func main() {
	cfg, err := config.LoadConfig(config.GetConfigPath())
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		os.Exit(1)
	}
	defer logger.Close()

	logger.Info("Starting bpmn-token-engine", logger.String("instance", cfg.InstanceName))

	registry := storage.NewBadgerRegistry(&storage.Config{
		Path: cfg.Storage.Directory,
	})
	if err := registry.Init(); err != nil {
		logger.Fatal("registry init failed", logger.String("error", err.Error()))
	}
	if err := registry.Start(); err != nil {
		logger.Fatal("registry start failed", logger.String("error", err.Error()))
	}
	defer registry.Stop()

	var evaluator host.ScriptEvaluator = scripting.NewGojaEvaluator(cfg.Scripting.TimeoutMs, cfg.Scripting.EntryPoint)

	var sink host.EventSink
	if cfg.EventSink.Kind == "channel" {
		sink = host.NewChannelEventSink(256)
	} else {
		sink = host.NewLoggingEventSink()
	}

	var engineMetrics *metrics.EngineMetrics
	if cfg.Metrics.Enabled {
		engineMetrics = metrics.NewEngineMetrics(prometheus.DefaultRegisterer)
	}

	engine := process.NewEngine(registry, evaluator, sink, engineMetrics)
	if err := engine.Init(); err != nil {
		logger.Fatal("engine init failed", logger.String("error", err.Error()))
	}
	if err := engine.Start(); err != nil {
		logger.Fatal("engine start failed", logger.String("error", err.Error()))
	}
	defer engine.Stop()

	serverConfig := restapi.DefaultConfig()
	serverConfig.Host = cfg.RestAPI.Host
	serverConfig.Port = cfg.RestAPI.Port
	server := restapi.NewServer(serverConfig, engine)
	if err := server.Start(); err != nil {
		logger.Fatal("rest api start failed", logger.String("error", err.Error()))
	}
	defer server.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down bpmn-token-engine")
}
