package configs_test

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"

	"winenow.app/WineNowNote/configs"
)

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigTestSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) TestGetConfig_GetsNamedFile() {
	logger := zaptest.NewLogger(suite.T())

	config, err := configs.GetConfig("testdata/config.toml", logger)

	suite.Require().NoError(err)
	suite.Equal("test.local", config.DB.Host)
	suite.Equal(1234, config.DB.Port)
	suite.Equal("testuser", config.DB.User)
	suite.Equal("test123", config.DB.Password)
	suite.Equal("testdb", config.DB.Database)
	suite.Equal(5, config.DB.MaxIdleConnections)
	suite.Equal(7, config.DB.MaxOpenConnections)
	suite.Equal(666, config.Server.Port)
	suite.Equal("secret", config.Auth.SecretKey)
	suite.Equal(2, config.Auth.AccessTTLHours)
	suite.Equal(48, config.Auth.RefreshTTLHours)
	suite.Equal("/tmp/media", config.Storage.MediaDir)
	suite.Equal("http://media.test.local/media", config.Storage.BaseURL)
	suite.Equal([]string{"winesearcher_web"}, config.Integrations.Wine)
}

func (suite *ConfigTestSuite) TestGetConfig_GetsEnv() {
	logger := zaptest.NewLogger(suite.T())

	suite.T().Setenv("WINENOWNOTE_DB_HOST", "test.local")
	suite.T().Setenv("WINENOWNOTE_DB_PORT", "1234")
	suite.T().Setenv("WINENOWNOTE_DB_USER", "testuser")
	suite.T().Setenv("WINENOWNOTE_DB_PASSWORD", "test123")
	suite.T().Setenv("WINENOWNOTE_DB_DATABASE", "testdb")
	suite.T().Setenv("WINENOWNOTE_SERVER_PORT", "666")
	suite.T().Setenv("WINENOWNOTE_AUTH_SECRETKEY", "secret")
	suite.T().Setenv("WINENOWNOTE_STORAGE_MEDIADIR", "/tmp/media")
	suite.T().Setenv("WINENOWNOTE_STORAGE_BASEURL", "http://media.test.local/media")

	config, err := configs.GetConfig("", logger)

	suite.Require().NoError(err)
	suite.Equal("test.local", config.DB.Host)
	suite.Equal(1234, config.DB.Port)
	suite.Equal("testuser", config.DB.User)
	suite.Equal("test123", config.DB.Password)
	suite.Equal("testdb", config.DB.Database)
	suite.Equal(666, config.Server.Port)
	suite.Equal("secret", config.Auth.SecretKey)
	suite.Equal(12, config.Auth.AccessTTLHours)
	suite.Equal(336, config.Auth.RefreshTTLHours)
	suite.Equal("/tmp/media", config.Storage.MediaDir)
	suite.Equal([]string{"winesearcher_web"}, config.Integrations.Wine)
}

func (suite *ConfigTestSuite) TestGetConfig_EnvOverridesFile() {
	logger := zaptest.NewLogger(suite.T())

	suite.T().Setenv("WINENOWNOTE_DB_HOST", "env.local")
	suite.T().Setenv("WINENOWNOTE_DB_USER", "envuser")
	suite.T().Setenv("WINENOWNOTE_AUTH_SECRETKEY", "envsecret")

	config, err := configs.GetConfig("testdata/config.toml", logger)

	suite.Require().NoError(err)
	suite.Equal("env.local", config.DB.Host)
	suite.Equal(1234, config.DB.Port)
	suite.Equal("envuser", config.DB.User)
	suite.Equal("test123", config.DB.Password)
	suite.Equal("envsecret", config.Auth.SecretKey)
}

func (suite *ConfigTestSuite) TestGetConfig_MissingFileReturnsError() {
	logger := zaptest.NewLogger(suite.T())

	config, err := configs.GetConfig("testdata/missing.toml", logger)

	suite.Nil(config)
	suite.Error(err)
}

func (suite *ConfigTestSuite) TestGetConfig_MissingValues() {
	logger := zaptest.NewLogger(suite.T())

	config, err := configs.GetConfig("", logger)

	suite.Nil(config)
	suite.EqualError(err, "DB.Host: required validation failed, DB.Password: required validation failed, Auth.SecretKey: required validation failed")
}
