package internal

import "time"

var OneSecond = 1 * time.Second
var FiveSeconds = 5 * time.Second
