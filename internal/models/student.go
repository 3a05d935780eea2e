package models

import "time"

// XPPerLevel is the amount of XP a student needs to advance one level.
const XPPerLevel = 100

// Student represents a learner that earns XP and achievements.
type Student struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	XP        int       `gorm:"not null;default:0" json:"xp"`
	Level     int       `gorm:"not null;default:1" json:"level"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LevelForXP derives the level a student holds with the given XP.
func LevelForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/XPPerLevel + 1
}

// ApplyXP adds delta to the student's XP and re-derives the level.
// It is the only writer of XP and Level; XP never drops below zero.
func (s *Student) ApplyXP(delta int) {
	s.XP += delta
	if s.XP < 0 {
		s.XP = 0
	}
	s.Level = LevelForXP(s.XP)
}

// XPToNextLevel reports how much XP remains until the next level.
func (s Student) XPToNextLevel() int {
	return s.Level*XPPerLevel - s.XP
}
