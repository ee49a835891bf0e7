package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"taskboard-service/config"
	"taskboard-service/handlers"
	"taskboard-service/logging"
	"taskboard-service/realtime"
	"taskboard-service/repositories"
	"taskboard-service/services"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/sony/gobreaker"
)

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	logging.InitLogger()
	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting Taskboard Service...")

	if err := godotenv.Load(".env"); err != nil {
		logging.Logger.Warnf("Event ID: ENV_LOAD_SKIPPED, Description: No .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Logger.Fatalf("Event ID: CONFIG_ERROR, Description: %v", err)
	}

	ctx := context.Background()
	mongoClient, err := repositories.ConnectMongo(ctx, cfg.MongoURI)
	if err != nil {
		logging.Logger.Fatalf("Event ID: DB_CONNECTION_FAILED, Description: %v", err)
	}
	defer mongoClient.Disconnect(ctx)
	logging.Logger.Infof("Event ID: DB_CONNECTED, Description: Successfully connected to MongoDB at %s.", cfg.MongoURI)

	db := mongoClient.Database(cfg.MongoDBName)
	projectRepo := repositories.NewProjectRepo(db)
	folderRepo := repositories.NewFolderRepo(db)
	taskRepo := repositories.NewTaskRepo(db)
	collaboratorRepo := repositories.NewCollaboratorRepo(db)
	userRepo := repositories.NewUserRepo(db)

	// One collaborator row per (project, user) is enforced at the
	// store, closing the duplicate-invite race.
	if err := collaboratorRepo.EnsureIndexes(ctx); err != nil {
		logging.Logger.Fatalf("Event ID: DB_INDEX_FAILED, Description: %v", err)
	}

	notificationsBreaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "notifications-cb",
		MaxRequests: 1,
		Timeout:     5 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.Infof("Event ID: CIRCUIT_BREAKER_STATE_CHANGE, Description: Circuit Breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
		},
	})

	notificationRepo, err := repositories.NewNotificationRepo(cfg.CassandraHost, notificationsBreaker)
	if err != nil {
		logging.Logger.Fatalf("Event ID: CASS_CONNECTION_FAILED, Description: %v", err)
	}
	defer notificationRepo.CloseSession()
	if err := notificationRepo.CreateTable(); err != nil {
		logging.Logger.Fatalf("Event ID: CASS_TABLE_FAILED, Description: %v", err)
	}

	hub := realtime.NewHub()

	notificationService := services.NewNotificationService(notificationRepo, hub)
	authService := services.NewAuthService(userRepo, []byte(cfg.JWTSecret))
	projectService := services.NewProjectService(projectRepo, folderRepo, taskRepo, collaboratorRepo, hub)
	taskService := services.NewTaskService(taskRepo, hub)
	collaborationService := services.NewCollaborationService(collaboratorRepo, userRepo, projectRepo, notificationService, hub)

	authHandler := handlers.NewAuthHandler(authService)
	projectHandler := handlers.NewProjectHandler(projectService, authService)
	taskHandler := handlers.NewTaskHandler(taskService, projectService, authService)
	notificationHandler := handlers.NewNotificationHandler(notificationService, authService)
	collaborationHandler := handlers.NewCollaborationHandler(collaborationService, authService)
	realtimeHandler := handlers.NewRealtimeHandler(hub, projectService, authService)

	// Read notifications past retention are swept on a schedule.
	sweeper := cron.New()
	_, err = sweeper.AddFunc(fmt.Sprintf("@every %ds", int(cfg.ResyncInterval.Seconds())), func() {
		purged, err := notificationService.PurgeRead(context.Background(), cfg.RetentionPeriod)
		if err != nil {
			logging.Logger.Warnf("Event ID: RETENTION_SWEEP_FAILED, Description: %v", err)
			return
		}
		if purged > 0 {
			logging.Logger.Infof("Event ID: RETENTION_SWEEP, Description: Purged %d read notifications.", purged)
		}
	})
	if err != nil {
		logging.Logger.Fatalf("Event ID: CRON_SETUP_FAILED, Description: %v", err)
	}
	sweeper.Start()
	defer sweeper.Stop()

	r := mux.NewRouter()
	r.HandleFunc("/api/auth/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/api/auth/me", authHandler.Me).Methods("GET")

	r.HandleFunc("/api/projects", projectHandler.CreateProject).Methods("POST")
	r.HandleFunc("/api/projects", projectHandler.ListProjects).Methods("GET")
	r.HandleFunc("/api/projects/shared", collaborationHandler.SharedProjects).Methods("GET")
	r.HandleFunc("/api/projects/{id}", projectHandler.GetProjectByID).Methods("GET")
	r.HandleFunc("/api/projects/{id}", projectHandler.UpdateProject).Methods("PUT")
	r.HandleFunc("/api/projects/{id}", projectHandler.DeleteProject).Methods("DELETE")

	r.HandleFunc("/api/folders", projectHandler.CreateFolder).Methods("POST")
	r.HandleFunc("/api/folders", projectHandler.ListFolders).Methods("GET")
	r.HandleFunc("/api/folders/{id}", projectHandler.DeleteFolder).Methods("DELETE")

	r.HandleFunc("/api/tasks", taskHandler.CreateTask).Methods("POST")
	r.HandleFunc("/api/tasks", taskHandler.ListTasks).Methods("GET")
	r.HandleFunc("/api/tasks/calendar", taskHandler.Calendar).Methods("GET")
	r.HandleFunc("/api/tasks/project/{projectId}", taskHandler.GetTasksByProject).Methods("GET")
	r.HandleFunc("/api/tasks/{id}", taskHandler.UpdateTask).Methods("PUT")
	r.HandleFunc("/api/tasks/{id}", taskHandler.DeleteTask).Methods("DELETE")

	r.HandleFunc("/api/notifications", notificationHandler.List).Methods("GET")
	r.HandleFunc("/api/notifications/read", notificationHandler.MarkRead).Methods("PUT")
	r.HandleFunc("/api/notifications/read-all", notificationHandler.MarkAllRead).Methods("PUT")
	r.HandleFunc("/api/notifications/delete", notificationHandler.Delete).Methods("DELETE")

	r.HandleFunc("/api/collaborators/invite", collaborationHandler.Invite).Methods("POST")
	r.HandleFunc("/api/collaborators/accept", collaborationHandler.Accept).Methods("POST")
	r.HandleFunc("/api/collaborators/reject", collaborationHandler.Reject).Methods("POST")

	r.HandleFunc("/api/realtime", realtimeHandler.Stream).Methods("GET")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Taskboard service is running"))
	}).Methods("GET")

	corsRouter := enableCORS(r)

	logging.Logger.Infof("Event ID: SERVER_START, Description: Server is running on port %s", cfg.Port)
	fmt.Printf("Taskboard service running on http://localhost:%s\n", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, corsRouter))
}
