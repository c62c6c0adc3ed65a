// README: Entry point; loads config, wires stores and services, starts the
// HTTP server with the websocket gateway and the notification dispatcher.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"stackshack/internal/config"
	httptransport "stackshack/internal/http"
	"stackshack/internal/infra"
	"stackshack/internal/maps"
	"stackshack/internal/modules/donation"
	"stackshack/internal/modules/notify"
	"stackshack/internal/modules/order"
	"stackshack/internal/modules/shelter"
	"stackshack/internal/modules/user"
	"stackshack/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("db init: %v", err)
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.RedisAddr)

	var geocoder user.Geocoder
	if cfg.MapsAPIKey != "" {
		g, err := maps.NewGeocodeService(cfg.MapsAPIKey)
		if err != nil {
			log.Fatalf("maps init: %v", err)
		}
		geocoder = g
	} else {
		log.Print("SHACK_MAPS_KEY not set; profile addresses will not be geocoded")
	}

	userStore := user.NewStore(dbPool, redisClient)
	userSvc := user.NewService(userStore, geocoder)

	shelterStore := shelter.NewStore(dbPool)
	donationStore := donation.NewStore(dbPool)

	presence := notify.NewPresence()
	gateway := ws.NewGateway(presence)

	dispatcher := notify.NewDispatcher(cfg.NotifyInterval(), presence, userStore, gateway)

	orderStore := order.NewStore(dbPool)
	orderSvc := order.NewService(orderStore, dispatcher, shelterStore, donationStore, cfg.FrontendURL)
	gateway.BindOrders(orderSvc)

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Orders:    orderSvc,
		Users:     userSvc,
		Shelters:  shelterStore,
		Donations: donationStore,
		WS:        gateway.Handler(),
		JWTSecret: cfg.JWTSecret,
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: router}
	go func() {
		<-ctx.Done()
		_ = server.Shutdown(context.Background())
	}()

	log.Printf("stackshack api listening on %s", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
