package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aguszappia/proyecto-de-software/config"
	"github.com/aguszappia/proyecto-de-software/database"
	"github.com/aguszappia/proyecto-de-software/database/model"
	"github.com/aguszappia/proyecto-de-software/logger"
	"github.com/aguszappia/proyecto-de-software/util/random"
	"github.com/aguszappia/proyecto-de-software/web"
	"github.com/aguszappia/proyecto-de-software/web/service"

	"github.com/joho/godotenv"
	"github.com/op/go-logging"
	"github.com/spf13/cobra"
)

func runWebServer() {
	log.Printf("%v %v", config.GetName(), config.GetVersion())

	switch config.GetLogLevel() {
	case config.Debug:
		logger.InitLogger(logging.DEBUG)
	case config.Info:
		logger.InitLogger(logging.INFO)
	case config.Warn:
		logger.InitLogger(logging.WARNING)
	case config.Error:
		logger.InitLogger(logging.ERROR)
	default:
		log.Fatal("unknown log level:", config.GetLogLevel())
	}

	err := database.InitDB(config.GetDBPath())
	if err != nil {
		log.Fatal(err)
	}

	server := web.NewServer()
	err = server.Start()
	if err != nil {
		log.Println(err)
		return
	}

	sigCh := make(chan os.Signal, 1)
	// Trap shutdown signals
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGTERM)
	for {
		sig := <-sigCh

		switch sig {
		case syscall.SIGHUP:
			err := server.Stop()
			if err != nil {
				logger.Warning("stop server err:", err)
			}
			server = web.NewServer()
			err = server.Start()
			if err != nil {
				log.Println(err)
				return
			}
		default:
			err := server.Stop()
			if err != nil {
				return
			}
			return
		}
	}
}

func resetAdmin(email string, password string) {
	err := database.InitDB(config.GetDBPath())
	if err != nil {
		fmt.Println(err)
		return
	}

	userService := service.UserService{}
	allRoles := []string{database.RolePublic, database.RoleEditor, database.RoleAdmin, database.RoleSysAdmin}

	user, err := userService.GetUserByEmail(email)
	if err != nil {
		active := true
		_, fieldErrors, err := userService.CreateUser(service.UserPayload{
			Email:     email,
			FirstName: "Admin",
			LastName:  "Local",
			Password:  password,
			Role:      database.RoleSysAdmin,
			IsActive:  &active,
		}, allRoles)
		if err != nil || fieldErrors.Any() {
			fmt.Println("create admin failed:", err, fieldErrors)
			return
		}
		fmt.Println("admin account created:", email)
		return
	}

	_, fieldErrors, err := userService.UpdateUser(user.Id, service.UserPayload{
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      user.RoleSlug(),
		Password:  password,
	}, allRoles)
	if err != nil || fieldErrors.Any() {
		fmt.Println("reset admin password failed:", err, fieldErrors)
		return
	}
	fmt.Println("admin password updated:", email)
}

func seedDemoData() {
	err := database.InitDB(config.GetDBPath())
	if err != nil {
		fmt.Println(err)
		return
	}

	tagService := service.TagService{}
	siteService := service.SiteService{}

	tagIds := make(map[string]int)
	for _, name := range []string{"Arquitectura", "Museos", "Ferroviario"} {
		tag, fieldErrors, err := tagService.CreateTag(name)
		if err != nil {
			fmt.Println("seed tag failed:", err)
			return
		}
		if fieldErrors.Any() {
			existing, err := tagService.ListTags()
			if err != nil {
				fmt.Println("seed tag lookup failed:", err)
				return
			}
			for _, t := range existing {
				if t.Name == name {
					tagIds[name] = t.Id
				}
			}
			continue
		}
		tagIds[name] = tag.Id
	}

	visible := true
	year := 1932
	demoSites := []service.SitePayload{
		{
			Name:               strPtr("Catedral de La Plata"),
			ShortDescription:   strPtr("Catedral neogótica, la más grande de la Argentina"),
			FullDescription:    strPtr("Iniciada en 1884 y consagrada en 1932, domina la plaza Moreno."),
			City:               strPtr("La Plata"),
			Province:           strPtr("Buenos Aires"),
			Latitude:           floatPtr(-34.9225),
			Longitude:          floatPtr(-57.9562),
			ConservationStatus: statusPtr(model.ConservationGood),
			InaugurationYear:   &year,
			Category:           categoryPtr(model.CategoryArchitecture),
			IsVisible:          &visible,
			TagIds:             []int{tagIds["Arquitectura"]},
		},
		{
			Name:               strPtr("Museo de La Plata"),
			ShortDescription:   strPtr("Museo de ciencias naturales de la UNLP"),
			FullDescription:    strPtr("Uno de los museos de historia natural más importantes de Sudamérica."),
			City:               strPtr("La Plata"),
			Province:           strPtr("Buenos Aires"),
			Latitude:           floatPtr(-34.9097),
			Longitude:          floatPtr(-57.9386),
			ConservationStatus: statusPtr(model.ConservationRegular),
			Category:           categoryPtr(model.CategoryArchitecture),
			IsVisible:          &visible,
			TagIds:             []int{tagIds["Arquitectura"], tagIds["Museos"]},
		},
		{
			Name:               strPtr("Estación Provincial Meridiano V"),
			ShortDescription:   strPtr("Antigua estación del Ferrocarril Provincial"),
			FullDescription:    strPtr("Cabecera del ramal a Avellaneda, hoy centro cultural barrial."),
			City:               strPtr("La Plata"),
			Province:           strPtr("Buenos Aires"),
			Latitude:           floatPtr(-34.9380),
			Longitude:          floatPtr(-57.9740),
			ConservationStatus: statusPtr(model.ConservationBad),
			Category:           categoryPtr(model.CategoryInfrastructure),
			IsVisible:          &visible,
			TagIds:             []int{tagIds["Ferroviario"]},
		},
	}

	created := 0
	for _, payload := range demoSites {
		if _, err := siteService.CreateSite(payload); err != nil {
			fmt.Println("seed site failed:", err)
			continue
		}
		created++
	}
	fmt.Printf("seeded %d tags and %d sites\n", len(tagIds), created)
}

func strPtr(v string) *string                                        { return &v }
func floatPtr(v float64) *float64                                    { return &v }
func statusPtr(v model.ConservationStatus) *model.ConservationStatus { return &v }
func categoryPtr(v model.SiteCategory) *model.SiteCategory           { return &v }

func showSettings() {
	fmt.Println("listen:", config.GetListen())
	fmt.Println("port:", config.GetPort())
	fmt.Println("base path:", config.GetBasePath())
	fmt.Println("db path:", config.GetDBPath())
	fmt.Println("log folder:", config.GetLogFolder())
	fmt.Println("session max age (min):", config.GetSessionMaxAge())
	fmt.Println("history retention (days):", config.GetHistoryRetentionDays())
}

func main() {
	_ = godotenv.Load()

	var rootCmd = &cobra.Command{
		Use:   config.GetName(),
		Short: "Plataforma de sitios históricos municipales",
	}

	var runCmd = &cobra.Command{
		Use:   "run",
		Short: "Levanta el panel de administración y la API pública",
		Run: func(cmd *cobra.Command, args []string) {
			runWebServer()
		},
	}

	var adminEmail string
	var adminPassword string
	var adminCmd = &cobra.Command{
		Use:   "admin",
		Short: "Crea o resetea la cuenta de administración",
		Run: func(cmd *cobra.Command, args []string) {
			if adminEmail == "" {
				fmt.Println("--email is required")
				return
			}
			if adminPassword == "" {
				adminPassword = random.Seq(16)
				fmt.Println("generated password:", adminPassword)
			}
			resetAdmin(adminEmail, adminPassword)
		},
	}
	adminCmd.Flags().StringVar(&adminEmail, "email", "", "admin account email")
	adminCmd.Flags().StringVar(&adminPassword, "password", "", "new password (generated when omitted)")

	var settingCmd = &cobra.Command{
		Use:   "setting",
		Short: "Muestra la configuración efectiva",
		Run: func(cmd *cobra.Command, args []string) {
			showSettings()
		},
	}

	var seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Carga etiquetas y sitios de demostración",
		Run: func(cmd *cobra.Command, args []string) {
			seedDemoData()
		},
	}

	rootCmd.AddCommand(runCmd, adminCmd, settingCmd, seedCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
