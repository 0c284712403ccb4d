package config

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL"`

	NowPayments NowPayments `envPrefix:"NOWPAYMENTS_"`
}

type NowPayments struct {
	APIKey    string `env:"API_KEY"`
	IPNSecret string `env:"IPN_SECRET"`
	Sandbox   bool   `env:"SANDBOX" envDefault:"false"`
}

// BaseApiURL picks the gateway host from the sandbox flag.
func (n *NowPayments) BaseApiURL() string {
	if n.Sandbox {
		return "https://api-sandbox.nowpayments.io/v1"
	}
	return "https://api.nowpayments.io/v1"
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}
