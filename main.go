package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	openai "github.com/sashabaranov/go-openai"

	"map-action-api/config"
	"map-action-api/handlers"
	"map-action-api/routes"
	"map-action-api/services"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system env")
	}
	settings := config.Load()

	// Establish database connections
	pgDB := config.ConnectPostgres(settings)
	mongoDB := config.ConnectMongoDB(settings)

	// Wire the analysis pipeline
	geocoder := services.NewGeocoder(settings.NominatimURL)
	extractor := services.NewExtractor(services.NewRESTImageryCatalog(settings.ImageryURL))
	sampler := services.NewLandCoverSampler(services.NewRESTLandCoverSource(settings.LandCoverURL))
	analysis := services.NewAnalysisService(geocoder, extractor, sampler)

	reports, err := services.NewReportStore(pgDB)
	if err != nil {
		log.Fatal("Failed to prepare report store:", err)
	}

	// Wire the incident chat
	sessions := services.NewMongoChatStore(mongoDB)
	chat := services.NewChatService(openai.NewClient(settings.OpenAIKey), sessions, settings.OpenAIModel)

	handler := handlers.NewHandler(analysis, reports, chat, sessions)

	// Initialize Gin router in release mode
	gin.SetMode(gin.ReleaseMode)
	router := gin.Default()

	// CORS middleware for cross-origin requests
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// Register all routes
	routes.RegisterRoutes(router, handler)

	fmt.Printf("\n")
	fmt.Printf("============================================\n")
	fmt.Printf("  Map Action API\n")
	fmt.Printf("  Running on http://localhost:%s\n", settings.Port)
	fmt.Printf("============================================\n")
	fmt.Printf("\n")

	router.Run(":" + settings.Port)
}
