// Command menuctl administers restaurant menus from the shell: it lists and
// switches instances, inspects dishes, sets the menu price and exports
// snapshots.  It reads the same environment as the server.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/iliyamo/menu-factory/internal/config"
	"github.com/iliyamo/menu-factory/internal/kv"
	"github.com/iliyamo/menu-factory/internal/oracle"
	"github.com/iliyamo/menu-factory/internal/repository"
	"github.com/iliyamo/menu-factory/internal/service"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:           "menuctl",
	Short:         "Administer restaurant menus",
	Long:          `menuctl manages menu instances, dishes and prices in the store the menu server uses, and exports menu snapshots to files or S3.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// openStore is replaced in tests to share one in-memory store across commands.
var openStore = func(ctx context.Context, cfg config.Config) (kv.Store, func()) {
	var rdb *redis.Client
	if cfg.StoreBackend == config.BackendRedis {
		rdb = config.NewRedisClient(config.LoadRedisConfig())
	}
	store, closeStore := kv.Open(ctx, cfg, rdb)
	return store, func() {
		closeStore()
		if rdb != nil {
			_ = rdb.Close()
		}
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.menuctl.yaml)")
	rootCmd.PersistentFlags().String("store", "", "store backend: memory, redis, mysql, postgres or disabled")
	rootCmd.PersistentFlags().String("key-prefix", "", "namespace for every stored key")
	rootCmd.PersistentFlags().String("events", "", "event backend: local, amqp or kafka")
	rootCmd.PersistentFlags().Bool("json", false, "print JSON instead of tables")

	_ = viper.BindPFlag("store_backend", rootCmd.PersistentFlags().Lookup("store"))
	_ = viper.BindPFlag("store_key_prefix", rootCmd.PersistentFlags().Lookup("key-prefix"))
	_ = viper.BindPFlag("events_backend", rootCmd.PersistentFlags().Lookup("events"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	rootCmd.AddCommand(instancesCmd(), dishesCmd(), priceCmd(), exportCmd())
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".menuctl")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig reads the server environment and applies flag and config file
// overrides, which viper exposes under the env variable names.
func loadConfig() config.Config {
	for _, key := range []string{"store_backend", "store_key_prefix", "events_backend"} {
		if v := viper.GetString(key); v != "" {
			_ = os.Setenv(strings.ToUpper(key), v)
		}
	}
	return config.Load()
}

// withService runs fn against a MenuService wired like the server's,
// without the in-process hub.
func withService(cmd *cobra.Command, fn func(ctx context.Context, svc *service.MenuService) error) error {
	cfg := loadConfig()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	store, closeStore := openStore(ctx, cfg)
	defer closeStore()

	var analyzer oracle.Analyzer = oracle.Disabled{}
	if llm, err := oracle.New(cfg); err == nil {
		analyzer = llm
	}
	pub, closePub := service.PublisherFromConfig(cfg, nil)
	defer closePub()

	svc := service.NewMenuService(
		repository.NewRegistry(store),
		repository.NewDishStore(store),
		repository.NewPriceStore(store, cfg.DefaultMenuPrice),
		analyzer,
		pub,
	)
	return fn(ctx, svc)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
