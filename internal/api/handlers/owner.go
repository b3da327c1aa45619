package handlers

import (
	"errors"
	"strconv"

	"github.com/alysesue/bookings-api-sub004/internal/domain"
)

// ErrInvalidOwner возвращается при некорректном владельце расписания в пути
var ErrInvalidOwner = errors.New("invalid schedule owner")

// OwnerFromVars разбирает владельца расписания из переменных пути:
// {ownerKind} = "services" | "service-providers", {ownerId} = положительный ID
func OwnerFromVars(vars map[string]string) (domain.ScheduleOwner, error) {
	ownerID, err := strconv.ParseInt(vars["ownerId"], 10, 64)
	if err != nil || ownerID <= 0 {
		return domain.ScheduleOwner{}, ErrInvalidOwner
	}

	switch vars["ownerKind"] {
	case "services":
		return domain.ServiceOwner(ownerID), nil
	case "service-providers":
		return domain.ProviderOwner(ownerID), nil
	default:
		return domain.ScheduleOwner{}, ErrInvalidOwner
	}
}
