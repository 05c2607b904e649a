package models

import "time"

// Student is a learner that can be booked onto events. Optional text fields
// are stored as empty strings rather than NULL.
type Student struct {
	ID           int64      `db:"id" json:"id"`
	FirstName    string     `db:"first_name" json:"first_name"`
	MiddleName   string     `db:"middle_name" json:"middle_name"`
	LastName     string     `db:"last_name" json:"last_name"`
	DateOfBirth  *time.Time `db:"date_of_birth" json:"date_of_birth"`
	StudentID    string     `db:"student_id" json:"student_id"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Street       string     `db:"street" json:"street"`
	City         string     `db:"city" json:"city"`
	Province     string     `db:"province" json:"province"`
	District     string     `db:"district" json:"district"`
	Zip          string     `db:"zip" json:"zip"`
	Email        string     `db:"email" json:"email"`
	Phone        string     `db:"phone" json:"phone"`
	ClassLevel   *int       `db:"class_level" json:"class_level"`
	Faculty      string     `db:"faculty" json:"faculty"`
	Comments     string     `db:"comments" json:"comments"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

// FullName joins the non-empty name parts.
func (s Student) FullName() string {
	name := s.FirstName
	for _, part := range []string{s.MiddleName, s.LastName} {
		if part == "" {
			continue
		}
		if name != "" {
			name += " "
		}
		name += part
	}
	return name
}

// StudentRegisterRequest is the self-registration form.
type StudentRegisterRequest struct {
	FirstName   string `form:"first_name" json:"first_name" validate:"required,max=30"`
	MiddleName  string `form:"middle_name" json:"middle_name" validate:"max=30"`
	LastName    string `form:"last_name" json:"last_name" validate:"required,max=30"`
	DateOfBirth string `form:"dob" json:"dob" validate:"required"`
	StudentID   string `form:"student_id" json:"student_id" validate:"required,max=20"`
	Password    string `form:"password" json:"password" validate:"required"`
	Street      string `form:"street" json:"street" validate:"max=100"`
	City        string `form:"city" json:"city" validate:"max=50"`
	Province    string `form:"province" json:"province" validate:"max=50"`
	District    string `form:"district" json:"district" validate:"max=50"`
	Zip         string `form:"zip" json:"zip" validate:"max=10"`
	Email       string `form:"email" json:"email" validate:"required,email"`
	Phone       string `form:"phone" json:"phone" validate:"max=15"`
	ClassLevel  string `form:"class_level" json:"class_level"`
	Faculty     string `form:"faculty" json:"faculty" validate:"max=50"`
	Comments    string `form:"comments" json:"comments"`
}

// ImportResult summarises a bulk student upload.
type ImportResult struct {
	Imported int    `json:"imported"`
	Archive  string `json:"archive,omitempty"`
}
