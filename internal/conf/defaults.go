// conf/defaults.go default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "labelrun")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "logs/labelrun.log")

	viper.SetDefault("output.sqlite.enabled", true)
	viper.SetDefault("output.sqlite.path", "labelrun.db")

	viper.SetDefault("output.mysql.enabled", false)
	viper.SetDefault("output.mysql.username", "labelrun")
	viper.SetDefault("output.mysql.password", "")
	viper.SetDefault("output.mysql.database", "labelrun")
	viper.SetDefault("output.mysql.host", "localhost")
	viper.SetDefault("output.mysql.port", "3306")

	viper.SetDefault("print.device", "")
	viper.SetDefault("print.timeout", 10*time.Second)
	viper.SetDefault("print.spoolfallback", true)

	viper.SetDefault("preview.enabled", true)
	viper.SetDefault("preview.endpoint", "http://api.labelary.com/v1")
	viper.SetDefault("preview.timeout", 15*time.Second)
	viper.SetDefault("preview.cachettl", 10*time.Minute)
}
