package entity

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jacentio/platewise"
	"github.com/jacentio/platewise/rating"
)

// FoodItemInput is the caller-supplied part of a FoodItem.
type FoodItemInput struct {
	FoodName       string            `json:"foodName" validate:"required,max=200"`
	FoodOrigin     string            `json:"foodOrigin" validate:"omitempty,max=200"`
	FoodAttributes map[string]string `json:"foodAttributes" validate:"max=20,dive,keys,required,max=64,endkeys,max=2000"`
}

// UserInput is the caller-supplied part of a User.
type UserInput struct {
	UserName  string `json:"userName" validate:"required,max=200"`
	UserEmail string `json:"userEmail" validate:"required,email"`
}

// ReviewInput is the caller-supplied part of a Review. FoodID is only read on
// create; an update keeps the review attached to its food item.
type ReviewInput struct {
	FoodID   string `json:"foodId" validate:"omitempty,max=200"`
	Quality  Number `json:"quality" validate:"required"`
	Quantity Number `json:"quantity" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// fieldErrors collects per-field messages into a single ValidationError.
type fieldErrors map[string]string

func (f fieldErrors) addStruct(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	for _, fe := range verrs {
		f[fe.Field()] = msgForTag(fe)
	}
	return nil
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &platewise.ValidationError{Reason: "input rejected", Fields: f}
}

func msgForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "max":
		if fe.Kind() == reflect.Map {
			return fmt.Sprintf("must have at most %s entries", fe.Param())
		}
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return fmt.Sprintf("failed on '%s' validation", fe.Tag())
	}
}

// NewFoodItem builds a FoodItem from input. With existing == nil a new id is
// assigned and the aggregates start at zero; otherwise the id and aggregates
// are carried over from existing.
func NewFoodItem(in FoodItemInput, existing *FoodItem) (*FoodItem, error) {
	errs := fieldErrors{}
	if err := errs.addStruct(validate.Struct(in)); err != nil {
		return nil, err
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	f := &FoodItem{
		Type:       TypeFoodItem,
		FoodName:   in.FoodName,
		FoodOrigin: in.FoodOrigin,
	}
	if len(in.FoodAttributes) > 0 {
		f.FoodAttributes = in.FoodAttributes
	}
	if existing != nil {
		f.EntityID = existing.EntityID
		f.TotalRating = existing.TotalRating
		f.NumReviews = existing.NumReviews
	} else {
		f.EntityID = newID()
	}
	return f, nil
}

// NewUser builds a User from input. With existing == nil a new id and
// creation time are assigned; otherwise both are carried over.
func NewUser(in UserInput, existing *User) (*User, error) {
	errs := fieldErrors{}
	if err := errs.addStruct(validate.Struct(in)); err != nil {
		return nil, err
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	u := &User{
		Type:      TypeUser,
		UserName:  in.UserName,
		UserEmail: in.UserEmail,
	}
	if existing != nil {
		u.EntityID = existing.EntityID
		u.Created = existing.Created
	} else {
		u.EntityID = newID()
		u.Created = timestamp()
	}
	return u, nil
}

// NewReview builds a Review from input, computing its rating and stamping
// reviewDate. userID is the author and is only used on create; an update
// carries the id, food item and author over from existing.
func NewReview(in ReviewInput, userID string, existing *Review) (*Review, error) {
	errs := fieldErrors{}
	if err := errs.addStruct(validate.Struct(in)); err != nil {
		return nil, err
	}
	if existing == nil {
		if in.FoodID == "" {
			errs[AttrFoodID] = "is required"
		}
		if userID == "" {
			errs[AttrUserID] = "is required"
		}
	}

	quality, qualityErr := in.Quality.Float64()
	if qualityErr != nil && in.Quality != "" {
		errs["quality"] = "must be a number"
	}
	quantity, quantityErr := in.Quantity.Float64()
	if quantityErr != nil && in.Quantity != "" {
		errs["quantity"] = "must be a number"
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	score, err := rating.Compute(quality, quantity)
	if err != nil {
		return nil, err
	}

	r := &Review{
		Type:       TypeReview,
		Quality:    rating.Round(quality, 2),
		Quantity:   int(math.Trunc(quantity)),
		Rating:     score,
		ReviewDate: timestamp(),
	}
	if existing != nil {
		r.EntityID = existing.EntityID
		r.FoodID = existing.FoodID
		r.UserID = existing.UserID
	} else {
		r.EntityID = newID()
		r.FoodID = in.FoodID
		r.UserID = userID
	}
	return r, nil
}
