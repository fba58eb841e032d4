package main

import (
	"github.com/blogward/blogward/cache"
	"github.com/blogward/blogward/config"
	"github.com/blogward/blogward/models"
	"github.com/blogward/blogward/routes"
	"github.com/blogward/blogward/utils"
)

func main() {
	cfg := config.Load()

	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Blog{},
		&models.Tag{},
		&models.BlogVote{},
		&models.Comment{},
		&models.Reply{},
		&models.Setting{},
	)

	listCache := cache.New(utils.GetRedis())
	r := routes.SetupRouter(db, listCache)

	utils.Sugar.Infof("Starting server on port %s", cfg.AppPort)
	if err := utils.Serve(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
