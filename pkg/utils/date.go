package utils

import (
	"log"
	"time"

	"github.com/myconcall-sys/myconcall/pkg/common"
)

// LocationIST returns the Asia/Kolkata location used for all concall timestamps.
func LocationIST() *time.Location {
	loc, err := time.LoadLocation(common.TimeZoneIST)
	if err != nil {
		log.Fatal("Failed to load location", err)
	}
	return loc
}

// TimeNowIST returns the current time in IST.
func TimeNowIST() time.Time {
	return time.Now().In(LocationIST())
}
