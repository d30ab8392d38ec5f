package config

import (
	"os"
	"path/filepath"

	"github.com/lapmart/lapmart/pkg/common"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v2"
)

type SysConfig struct {
	Appid    string `yaml:"appid" json:"appid"`
	Location string `yaml:"location" json:"location"`
	Workdir  string `yaml:"workdir" json:"workdir"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type WebConfig struct {
	Host      string `yaml:"host" json:"host"`
	Port      int    `yaml:"port" json:"port"`
	JwtSecret string `yaml:"jwt_secret" json:"jwt_secret"`
}

type DBConfig struct {
	Url  string `yaml:"url" json:"url"`
	Name string `yaml:"name" json:"name"`
}

type PaymentConfig struct {
	ProviderUrl string `yaml:"provider_url" json:"provider_url"`
	Secret      string `yaml:"secret" json:"secret"`
	Currency    string `yaml:"currency" json:"currency"`
}

type LogConfig struct {
	Mode       string `yaml:"mode" json:"mode"`
	FileEnable bool   `yaml:"file_enable" json:"file_enable"`
	Filename   string `yaml:"filename" json:"filename"`
}

type AppConfig struct {
	System   SysConfig     `yaml:"system" json:"system"`
	Web      WebConfig     `yaml:"web" json:"web"`
	Database DBConfig      `yaml:"database" json:"database"`
	Payment  PaymentConfig `yaml:"payment" json:"payment"`
	Logger   LogConfig     `yaml:"logger" json:"logger"`
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "Lapmart",
		Location: "Asia/Dhaka",
		Workdir:  "/var/lapmart",
		Debug:    true,
	},
	Web: WebConfig{
		Host:      "0.0.0.0",
		Port:      5000,
		JwtSecret: "9b6de5cc-0731-4bf1-xxxx-0f568ac9da37",
	},
	Database: DBConfig{
		Url:  "mongodb://127.0.0.1:27017",
		Name: "lapmart",
	},
	Payment: PaymentConfig{
		ProviderUrl: "https://api.stripe.com/v1/payment_intents",
		Currency:    "usd",
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/lapmart/lapmart.log",
	},
}

func (c *AppConfig) initDirs() {
	_ = os.MkdirAll(filepath.Join(c.System.Workdir, "data"), 0755)
	_ = os.MkdirAll(filepath.Join(c.System.Workdir, "logs"), 0755)
}

// setEnvValue overrides a string option when the environment variable is present
func setEnvValue(name string, f func(v string)) {
	if v, ok := os.LookupEnv(name); ok {
		f(v)
	}
}

func setEnvBoolValue(name string, f func(v bool)) {
	if v, ok := os.LookupEnv(name); ok {
		f(v == "true" || v == "1" || v == "on")
	}
}

func setEnvIntValue(name string, f func(v int)) {
	if v, ok := os.LookupEnv(name); ok {
		f(cast.ToInt(v))
	}
}

// LoadConfig loads the yaml config file and applies LAPMART_* environment
// overrides. A missing file yields the default configuration.
func LoadConfig(cfile string) *AppConfig {
	appconfig := new(AppConfig)
	*appconfig = *DefaultAppConfig
	if common.FileExists(cfile) {
		data, err := os.ReadFile(cfile)
		if err != nil {
			panic(err)
		}
		appconfig = new(AppConfig)
		if err := yaml.Unmarshal(data, appconfig); err != nil {
			panic(err)
		}
	}

	setEnvValue("LAPMART_SYSTEM_WORKDIR", func(v string) { appconfig.System.Workdir = v })
	setEnvBoolValue("LAPMART_SYSTEM_DEBUG", func(v bool) { appconfig.System.Debug = v })

	setEnvValue("LAPMART_WEB_HOST", func(v string) { appconfig.Web.Host = v })
	setEnvIntValue("LAPMART_WEB_PORT", func(v int) { appconfig.Web.Port = v })
	setEnvValue("LAPMART_WEB_JWT_SECRET", func(v string) { appconfig.Web.JwtSecret = v })

	setEnvValue("LAPMART_DB_URL", func(v string) { appconfig.Database.Url = v })
	setEnvValue("LAPMART_DB_NAME", func(v string) { appconfig.Database.Name = v })

	setEnvValue("LAPMART_PAYMENT_PROVIDER_URL", func(v string) { appconfig.Payment.ProviderUrl = v })
	setEnvValue("LAPMART_PAYMENT_SECRET", func(v string) { appconfig.Payment.Secret = v })
	setEnvValue("LAPMART_PAYMENT_CURRENCY", func(v string) { appconfig.Payment.Currency = v })

	appconfig.initDirs()
	return appconfig
}
