package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// Artist is a related entity reachable through User.Artist. The user holds
// a weak reference (a foreign-key-style link), not the record itself.
type Artist struct {
	ID   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name string             `bson:"name" json:"name" validate:"required"`
	Bio  string             `bson:"bio,omitempty" json:"bio,omitempty"`
}

// Validate checks the record's field rules.
func (a *Artist) Validate() error {
	return translate("artist", validate.Struct(a))
}
