package historycmd

import "github.com/sirupsen/logrus"

var log = logrus.WithField("prefix", "historycmd")
