package main

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"pcosadvisor/advisor"
	"pcosadvisor/dataset"
	"pcosadvisor/db"
	qhttp "pcosadvisor/http"
	"pcosadvisor/logging"
	"pcosadvisor/ml"
	"pcosadvisor/monitoring"
	"pcosadvisor/wizard"
)

type Config struct {
	Dataset struct {
		Path  string `yaml:"path"`
		Watch bool   `yaml:"watch"`
	} `yaml:"dataset"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Http struct {
		Port           int      `yaml:"port"`
		TimeoutSeconds int      `yaml:"timeout_seconds"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"http"`
	Log logging.Config `yaml:"log"`
	ML  ml.Config      `yaml:"ml"`
	Sessions struct {
		Capacity int `yaml:"capacity"`
	} `yaml:"sessions"`
	Model struct {
		Path string `yaml:"path"`
	} `yaml:"model"`
}

func main() {
	config, err := loadConfig("config.yaml")
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log, err := logging.New(config.Log)
	if err != nil {
		panic("failed to build logger: " + err.Error())
	}
	defer log.Sync()

	if err := db.InitDB(config.Database.Path); err != nil {
		log.Fatalw("failed to initialize database", "path", config.Database.Path, "err", err)
	}
	defer db.Close()
	log.Infow("database initialized", "path", config.Database.Path)

	// The service does not answer requests until a model is trained.
	forest, err := trainFromFile(config.Dataset.Path, config.ML, log)
	if err != nil {
		log.Fatalw("initial training failed", "dataset", config.Dataset.Path, "err", err)
	}
	recordTraining(forest, config.Model.Path, log)

	store, err := wizard.NewStore(config.Sessions.Capacity)
	if err != nil {
		log.Fatalw("failed to create session store", "err", err)
	}

	hub := monitoring.NewHub(log)
	go hub.Start()
	defer hub.Stop()

	qhttp.SetLogger(log)
	qhttp.SetStore(store)
	qhttp.SetPlanner(advisor.NewPlanner(nil))
	qhttp.SetModel(forest)
	qhttp.SetHub(hub)

	if config.Dataset.Watch {
		watcher, err := watchDataset(config, hub, log)
		if err != nil {
			log.Fatalw("failed to watch dataset", "err", err)
		}
		defer watcher.Close()
	}

	serverConfig := qhttp.DefaultServerConfig()
	if config.Http.Port != 0 {
		serverConfig.Port = config.Http.Port
	}
	if config.Http.TimeoutSeconds != 0 {
		serverConfig.Timeout = time.Duration(config.Http.TimeoutSeconds) * time.Second
	}
	if len(config.Http.AllowedOrigins) != 0 {
		serverConfig.AllowedOrigins = config.Http.AllowedOrigins
	}

	server := qhttp.NewServer(serverConfig)
	go func() {
		if err := server.Start(); err != nil {
			log.Fatalw("http server failed", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	if err := server.Stop(); err != nil {
		log.Warnw("server forced to shutdown", "err", err)
	}

	log.Info("exiting")
}

func loadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, err
	}
	if config.ML.Trees == 0 {
		config.ML = ml.DefaultConfig()
	}
	return &config, nil
}

func trainFromFile(path string, cfg ml.Config, log *zap.SugaredLogger) (*ml.Forest, error) {
	table, err := dataset.Load(path)
	if err != nil {
		return nil, err
	}
	ds, stats, err := dataset.Normalize(table)
	if err != nil {
		return nil, err
	}
	log.Infow("dataset normalized",
		"rows", stats.TotalRows,
		"kept", stats.Kept,
		"dropped_label", stats.DroppedLabel,
		"imputed", stats.Imputed,
	)
	return ml.Train(ds.Features, ds.Labels, dataset.FeatureNames(), ds.Medians, cfg)
}

func recordTraining(forest *ml.Forest, modelPath string, log *zap.SugaredLogger) {
	metrics := forest.Metrics()
	log.Infow("model trained", "accuracy", metrics.Accuracy, "data_points", metrics.DataPoints)

	if err := db.SaveTrainingRun("random_forest", metrics.Accuracy, metrics.DataPoints); err != nil {
		log.Warnw("failed to record training run", "err", err)
	}
	if modelPath != "" {
		if err := forest.Save(modelPath); err != nil {
			log.Warnw("failed to save model snapshot", "path", modelPath, "err", err)
		}
	}
}

// watchDataset retrains when the dataset file changes. A failed retrain
// keeps the current model serving.
func watchDataset(config *Config, hub *monitoring.Hub, log *zap.SugaredLogger) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(config.Dataset.Path)); err != nil {
		watcher.Close()
		return nil, err
	}

	target := filepath.Clean(config.Dataset.Path)
	go func() {
		var timer *time.Timer
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				// Editors fire several events per save; retrain once.
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(time.Second, func() {
					retrain(config, hub, log)
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warnw("dataset watcher error", "err", err)
			}
		}
	}()
	return watcher, nil
}

func retrain(config *Config, hub *monitoring.Hub, log *zap.SugaredLogger) {
	log.Infow("dataset changed, retraining", "path", config.Dataset.Path)

	forest, err := trainFromFile(config.Dataset.Path, config.ML, log)
	if err != nil {
		log.Warnw("retrain failed, keeping current model", "err", err)
		return
	}

	qhttp.SetModel(forest)
	recordTraining(forest, config.Model.Path, log)

	metrics := forest.Metrics()
	hub.Broadcast(monitoring.TrainingComplete, map[string]interface{}{
		"accuracy":    metrics.Accuracy,
		"data_points": metrics.DataPoints,
		"trained_at":  metrics.TrainedAt,
	})
}
