package main

import (
	"context"
	"net/http"
	_ "time/tzdata"

	"github.com/gorilla/mux"
	cron "github.com/robfig/cron/v3"
	"github.com/rs/cors"
	"github.com/sendgrid/sendgrid-go"
	"github.com/twilio/twilio-go"

	"github.com/clearclose/closing-service/internal/app"
	"github.com/clearclose/closing-service/internal/config"
	"github.com/clearclose/closing-service/internal/constants"
	"github.com/clearclose/closing-service/internal/controllers"
	"github.com/clearclose/closing-service/internal/middleware"
	"github.com/clearclose/closing-service/internal/repositories"
	"github.com/clearclose/closing-service/internal/routes"
	"github.com/clearclose/closing-service/internal/services"
	"github.com/clearclose/closing-service/internal/utils"
)

func main() {
	utils.InitLogger(config.AppName)
	cfg := config.LoadConfig()
	defer cfg.Close()

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize closing-service:", err)
	}
	defer application.Close()

	projectRepo := repositories.NewProjectRepository(application.DB)
	unitRepo := repositories.NewUnitRepository(application.DB)
	depositRepo := repositories.NewDepositRepository(application.DB)
	purchaserRepo := repositories.NewPurchaserRepository(application.DB)
	soaRepo := repositories.NewSOARepository(application.DB)
	shortfallRepo := repositories.NewShortfallRepository(application.DB)
	extensionRepo := repositories.NewExtensionRepository(application.DB)

	twClient := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.TwilioAccountSID,
		Password: cfg.TwilioAuthToken,
	})
	sgClient := sendgrid.NewSendClient(cfg.SendgridAPIKey)

	feeSvc := services.NewFeeService(projectRepo)
	notifier := services.NewNotificationService(cfg, sgClient, twClient)
	soaSvc := services.NewSOAService(unitRepo, projectRepo, depositRepo, purchaserRepo, soaRepo, feeSvc)
	shortfallSvc := services.NewShortfallService(cfg, unitRepo, soaRepo, purchaserRepo, shortfallRepo)
	recalcSvc := services.NewRecalcService(unitRepo, projectRepo, soaSvc, shortfallSvc, notifier)
	unitSvc := services.NewUnitService(unitRepo, depositRepo, purchaserRepo, recalcSvc)
	extensionSvc := services.NewExtensionService(extensionRepo, unitRepo, recalcSvc)

	if cfg.LDFlag_SeedDbWithTestData {
		if err := app.SeedTestData(context.Background(), projectRepo, unitSvc); err != nil {
			utils.Logger.WithError(err).Fatal("Failed to seed test data")
		} else {
			utils.Logger.Info("Seeded test data successfully")
		}
	}

	healthController := controllers.NewHealthController(application)
	projectsController := controllers.NewProjectsController(projectRepo, unitSvc, recalcSvc)
	unitsController := controllers.NewUnitsController(unitSvc, recalcSvc)
	soaController := controllers.NewSOAController(soaSvc)
	shortfallController := controllers.NewShortfallController(shortfallSvc)
	extensionsController := controllers.NewExtensionsController(extensionSvc)

	router := mux.NewRouter()

	// Public
	router.HandleFunc(routes.Health, healthController.HealthCheckHandler).Methods(http.MethodGet)

	secured := router.NewRoute().Subrouter()
	secured.Use(middleware.AuthMiddleware(cfg.RSAPublicKey))

	builderOnly := middleware.RequireRoles(middleware.RoleBuilder)
	builderOrLawyer := middleware.RequireRoles(middleware.RoleBuilder, middleware.RoleLawyer)
	lawyerOnly := middleware.RequireRoles(middleware.RoleLawyer)
	purchaserOnly := middleware.RequireRoles(middleware.RolePurchaser)
	anyParty := middleware.RequireRoles(middleware.RoleBuilder, middleware.RoleLawyer, middleware.RolePurchaser)

	// Projects
	secured.Handle(routes.Projects, builderOnly(http.HandlerFunc(projectsController.CreateProjectHandler))).Methods(http.MethodPost)
	secured.Handle(routes.Projects, anyParty(http.HandlerFunc(projectsController.ListProjectsHandler))).Methods(http.MethodGet)
	secured.Handle(routes.ProjectByID, anyParty(http.HandlerFunc(projectsController.GetProjectHandler))).Methods(http.MethodGet)
	secured.Handle(routes.ProjectUnits, anyParty(http.HandlerFunc(projectsController.ListProjectUnitsHandler))).Methods(http.MethodGet)
	secured.Handle(routes.ProjectFees, anyParty(http.HandlerFunc(projectsController.ListFeesHandler))).Methods(http.MethodGet)
	secured.Handle(routes.ProjectFees, builderOnly(http.HandlerFunc(projectsController.UpsertFeeHandler))).Methods(http.MethodPut)
	secured.Handle(routes.ProjectRefresh, builderOnly(http.HandlerFunc(projectsController.RefreshProjectHandler))).Methods(http.MethodPost)

	// Units and their inputs
	secured.Handle(routes.Units, builderOnly(http.HandlerFunc(unitsController.CreateUnitHandler))).Methods(http.MethodPost)
	secured.Handle(routes.UnitByID, anyParty(http.HandlerFunc(unitsController.GetUnitHandler))).Methods(http.MethodGet)
	secured.Handle(routes.UnitByID, builderOnly(http.HandlerFunc(unitsController.UpdateUnitHandler))).Methods(http.MethodPatch)
	secured.Handle(routes.UnitRecalc, builderOrLawyer(http.HandlerFunc(unitsController.RecalculateHandler))).Methods(http.MethodPost)
	secured.Handle(routes.UnitDeposits, builderOnly(http.HandlerFunc(unitsController.AddDepositHandler))).Methods(http.MethodPost)
	secured.Handle(routes.UnitDeposits, anyParty(http.HandlerFunc(unitsController.ListDepositsHandler))).Methods(http.MethodGet)
	secured.Handle(routes.DepositMarkPaid, builderOnly(http.HandlerFunc(unitsController.MarkDepositPaidHandler))).Methods(http.MethodPost)
	secured.Handle(routes.UnitMortgage, purchaserOnly(http.HandlerFunc(unitsController.SubmitMortgageHandler))).Methods(http.MethodPut)
	secured.Handle(routes.UnitFinancials, purchaserOnly(http.HandlerFunc(unitsController.SubmitFinancialsHandler))).Methods(http.MethodPut)

	// Statement of adjustments
	secured.Handle(routes.UnitSOA, anyParty(http.HandlerFunc(soaController.GetSOAHandler))).Methods(http.MethodGet)
	secured.Handle(routes.UnitSOAVersions, anyParty(http.HandlerFunc(soaController.ListVersionsHandler))).Methods(http.MethodGet)
	secured.Handle(routes.UnitSOAConfirm, builderOrLawyer(http.HandlerFunc(soaController.ConfirmHandler))).Methods(http.MethodPost)
	secured.Handle(routes.UnitSOAUnlock, builderOnly(http.HandlerFunc(soaController.UnlockHandler))).Methods(http.MethodPost)
	secured.Handle(routes.UnitSOALawyerBalance, lawyerOnly(http.HandlerFunc(soaController.LawyerBalanceHandler))).Methods(http.MethodPut)

	// Shortfall analysis
	secured.Handle(routes.UnitShortfall, anyParty(http.HandlerFunc(shortfallController.GetAnalysisHandler))).Methods(http.MethodGet)
	secured.Handle(routes.UnitShortfallVersions, anyParty(http.HandlerFunc(shortfallController.ListVersionsHandler))).Methods(http.MethodGet)
	secured.Handle(routes.UnitShortfallDecision, builderOnly(http.HandlerFunc(shortfallController.RecordDecisionHandler))).Methods(http.MethodPost)

	// Extensions
	secured.Handle(routes.UnitExtensions, anyParty(http.HandlerFunc(extensionsController.RequestExtensionHandler))).Methods(http.MethodPost)
	secured.Handle(routes.UnitExtensions, anyParty(http.HandlerFunc(extensionsController.ListUnitExtensionsHandler))).Methods(http.MethodGet)
	secured.Handle(routes.Extensions, builderOnly(http.HandlerFunc(extensionsController.ListPendingHandler))).Methods(http.MethodGet)
	secured.Handle(routes.ExtensionDecision, builderOnly(http.HandlerFunc(extensionsController.DecideHandler))).Methods(http.MethodPost)

	c := cron.New()
	_, cronErr := c.AddFunc(constants.NightlyRefreshCronSpec, recalcSvc.RefreshAllProjects)
	if cronErr != nil {
		utils.Logger.WithError(cronErr).Fatal("Failed to schedule nightly refresh cron")
	}
	c.Start()

	allowedOrigins := []string{cfg.AppUrl}
	if !cfg.LDFlag_CORSHighSecurity {
		allowedOrigins = append(allowedOrigins, "http://localhost:3000")
	}

	co := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	utils.Logger.Infof("Starting %s on port: %s", cfg.AppName, cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, co.Handler(router)); err != nil {
		utils.Logger.Fatal("closing-service failed to start:", err)
	}
}
