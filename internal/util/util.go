package util

import (
	"math"
	"net"
	"strconv"
)

func NetJoin(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// Round2 rounds a float to two decimal places for report output.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
