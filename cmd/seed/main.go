// cmd/seed loads demo data: an admin user, companies, services and quotes.
// Runs through the same services the API uses. Idempotent: companies are
// only created when the table is empty.
// Usage: go run ./cmd/seed
package main

import (
	"context"
	"os"
	"time"

	"github.com/Orbeng/engser/internal/auth"
	"github.com/Orbeng/engser/internal/config"
	"github.com/Orbeng/engser/internal/dto"
	"github.com/Orbeng/engser/internal/infra"
	"github.com/Orbeng/engser/internal/repository"
	"github.com/Orbeng/engser/internal/service"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	ctx := context.Background()

	userRepo := repository.NewUserRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)

	authn := auth.NewAuthenticator(cfg.JWTSecret, time.Hour, time.Hour)
	authSvc := service.NewAuthService(userRepo, authn, nil, cfg.AppBaseURL)
	companySvc := service.NewCompanyService(companyRepo, nil)
	serviceSvc := service.NewServiceService(serviceRepo, nil)
	quoteSvc := service.NewQuoteService(quoteRepo,
		service.NewClockNumberSource(cfg.QuoteNumberPrefix), cfg.QuoteNumberAttempts, nil)

	seedAdmin(ctx, authSvc)

	n, err := companyRepo.Count(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to count companies")
	}
	if n > 0 {
		log.Info().Int64("companies", n).Msg("database already seeded, skipping demo data")
		return
	}

	companies := make([]*dto.CompanyResponse, 0, len(demoCompanies))
	for _, req := range demoCompanies {
		c, err := companySvc.Create(ctx, req)
		if err != nil {
			log.Fatal().Err(err).Str("company", req.Name).Msg("failed to seed company")
		}
		companies = append(companies, c)
	}

	now := time.Now().UTC().Truncate(24 * time.Hour)
	services := []dto.CreateServiceRequest{
		{ART: "ART-2024-0001", Description: "Laudo de instalações elétricas", ServiceDate: now.AddDate(0, -2, 0),
			ExpiryDate: now.AddDate(0, 0, 10), Value: decimal.RequireFromString("3500.00"),
			Status: "in_progress", CompanyID: companies[0].ID.String()},
		{ART: "ART-2024-0002", Description: "Projeto de SPDA", ServiceDate: now.AddDate(0, -5, 0),
			ExpiryDate: now.AddDate(1, 0, 0), Value: decimal.RequireFromString("8200.00"),
			Status: "completed", CompanyID: companies[1].ID.String()},
		{ART: "ART-2024-0003", Description: "Inspeção de vasos de pressão", ServiceDate: now.AddDate(0, 0, 7),
			ExpiryDate: now.AddDate(0, 0, 25), Value: decimal.RequireFromString("5400.00"),
			Status: "scheduled", CompanyID: companies[2].ID.String()},
		{ART: "ART-2024-0004", Description: "Laudo ergonômico NR-17", ServiceDate: now.AddDate(0, -1, 0),
			ExpiryDate: now.AddDate(0, 6, 0), Value: decimal.RequireFromString("2750.00"),
			Status: "completed", CompanyID: companies[3].ID.String()},
	}
	seeded := make([]*dto.ServiceResponse, 0, len(services))
	for _, req := range services {
		s, err := serviceSvc.Create(ctx, req)
		if err != nil {
			log.Fatal().Err(err).Str("art", req.ART).Msg("failed to seed service")
		}
		seeded = append(seeded, s)
	}

	firstService := seeded[0].ID.String()
	quotes := []dto.CreateQuoteRequest{
		{
			Quote: dto.QuoteFields{
				Title: "Adequação NR-10", Description: "Adequação das instalações elétricas à NR-10",
				IssueDate: now, ValidUntil: now.AddDate(0, 0, 30), CompanyID: companies[0].ID.String(),
				TotalValue: decimal.RequireFromString("4700.00"),
			},
			Items: []dto.QuoteItemRequest{
				{ServiceID: &firstService, Description: "Laudo de instalações elétricas", UnitValue: decimal.RequireFromString("3500.00")},
				{Description: "Treinamento NR-10 (por turma)", Quantity: intPtr(2), UnitValue: decimal.RequireFromString("600.00")},
			},
		},
		{
			Quote: dto.QuoteFields{
				Title: "Inspeção anual", Description: "Inspeção anual de equipamentos",
				IssueDate: now, ValidUntil: now.AddDate(0, 0, 15), CompanyID: companies[2].ID.String(),
				TotalValue: decimal.RequireFromString("5400.00"), Status: "approved",
			},
			Items: []dto.QuoteItemRequest{
				{Description: "Inspeção de vasos de pressão", Quantity: intPtr(3), UnitValue: decimal.RequireFromString("1800.00")},
			},
		},
	}
	for _, req := range quotes {
		q, err := quoteSvc.Create(ctx, req)
		if err != nil {
			log.Fatal().Err(err).Str("quote", req.Quote.Title).Msg("failed to seed quote")
		}
		log.Info().Str("quote_number", q.QuoteNumber).Msg("quote seeded")
	}

	log.Info().Int("companies", len(companies)).Int("services", len(seeded)).Int("quotes", len(quotes)).Msg("seed complete")
}

func seedAdmin(ctx context.Context, authSvc service.AuthService) {
	username := envOr("SEED_ADMIN_USER", "admin")
	password := envOr("SEED_ADMIN_PASSWORD", "admin123")
	_, err := authSvc.Register(ctx, dto.RegisterRequest{Username: username, Password: password, Name: "Administrador"})
	switch {
	case err == nil:
		log.Info().Str("username", username).Msg("admin user created")
	case service.KindOf(err) == service.KindDuplicate:
		log.Info().Str("username", username).Msg("admin user already exists")
	default:
		log.Fatal().Err(err).Msg("failed to seed admin user")
	}
}

var demoCompanies = []dto.CreateCompanyRequest{
	{Name: "Metalúrgica Alfa Ltda", CNPJ: "12.345.678/0001-90", ContactName: "Ana Souza",
		Email: "ana@alfa.com.br", Phone: "(11) 3456-7890", Address: "Rua das Indústrias, 500",
		City: "São Paulo", State: "SP"},
	{Name: "Construtora Beta S.A.", CNPJ: "98.765.432/0001-10", ContactName: "Bruno Lima",
		Email: "bruno@beta.com.br", Phone: "(21) 2345-6789", Address: "Av. Atlântica, 1200",
		City: "Rio de Janeiro", State: "RJ"},
	{Name: "Química Gama Ltda", CNPJ: "11.222.333/0001-44", ContactName: "Carla Mendes",
		Email: "carla@gama.com.br", Phone: "(31) 3222-1100", Address: "Rod. BR-040, km 12",
		City: "Belo Horizonte", State: "MG"},
	{Name: "Logística Delta ME", CNPJ: "55.666.777/0001-88", ContactName: "Diego Rocha",
		Email: "diego@delta.com.br", Phone: "(41) 3030-4040", Address: "Rua XV de Novembro, 80",
		City: "Curitiba", State: "PR"},
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intPtr(v int) *int { return &v }
