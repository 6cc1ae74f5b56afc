package version

import "fmt"

// ServiceName используется в логах, health-ответах и User-Agent нагрузочного клиента.
const ServiceName = "customer-service"

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Info returns version information populated via -ldflags.
func Info() (v, c, d string) { return version, commit, date }

func GetVersion() string { return version }

func GetCommit() string { return commit }

func GetDate() string { return date }

func String() string {
	return fmt.Sprintf("service=%s version=%s commit=%s date=%s", ServiceName, version, commit, date)
}

// UserAgent возвращает значение заголовка User-Agent для исходящих HTTP-запросов.
func UserAgent() string {
	return ServiceName + "/" + version
}
