package database

var Tabels []interface{} = []interface{}{
	&User{},
	&Session{},
	&Integration{},
	&IntegrationLog{},
}
