package config

type StorageType string

const STORAGE_TYPE_REDIS StorageType = "redis"
const STORAGE_TYPE_INMEM StorageType = "memory"

type Config struct {
	HttpPort                 int
	StorageType              StorageType
	RedisConfig              RedisStorageConfig
	SchedulerIntervalSeconds int
	DispatcherCapacity       int
	TrialDays                int
	RemoteConfig             RemoteConfig
	MessageConfig            MessageConfig
}

type RedisStorageConfig struct {
	Addrs     []string
	Namespace string
}

// RemoteConfig points action handlers at the external remote-resource API.
type RemoteConfig struct {
	BaseUrl string
	Token   string
}

type MessageConfig struct {
	SmtpHost string
	SmtpPort int
	ImapHost string
	ImapPort int
	Username string
	Password string
}
