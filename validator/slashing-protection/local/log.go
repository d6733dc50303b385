package local

import "github.com/sirupsen/logrus"

var log = logrus.WithField("prefix", "local-slashing-protection")
