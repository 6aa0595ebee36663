// Package models contains the GORM persistence models of the scanning tables.
// Domain entities carry no ORM tags; each model converts to and from its
// entity with ToDomain and a ...FromDomain constructor.
package models
