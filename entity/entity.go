// Package entity defines the rows stored in the platewise table and the codec
// that builds them from caller input.
//
// FoodItem, User and Review share one table keyed by entityId and are told
// apart by their entityType tag. Derived attributes (FoodItem totals, Review
// rating, timestamps) are never taken from input.
package entity

import (
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/jacentio/platewise"
	"github.com/jacentio/platewise/store"
)

// Entity type tags.
const (
	TypeFoodItem = "foodItem"
	TypeUser     = "user"
	TypeReview   = "review"
)

// Attribute names shared with the store and planner.
const (
	AttrID          = "entityId"
	AttrType        = "entityType"
	AttrTotalRating = "totalRating"
	AttrNumReviews  = "numReviews"
	AttrFoodID      = "foodId"
	AttrUserID      = "userId"
	AttrRating      = "rating"
)

var (
	now   = func() time.Time { return time.Now().UTC() }
	newID = uuid.NewString
)

func timestamp() string {
	return now().UTC().Format(time.RFC3339)
}

// FoodItem is a reviewable item. TotalRating and NumReviews are the sum and
// count of the ratings of its live reviews.
type FoodItem struct {
	EntityID       string            `dynamodbav:"entityId" json:"entityId"`
	Type           string            `dynamodbav:"entityType" json:"entityType"`
	FoodName       string            `dynamodbav:"foodName" json:"foodName"`
	FoodOrigin     string            `dynamodbav:"foodOrigin,omitempty" json:"foodOrigin,omitempty"`
	FoodAttributes map[string]string `dynamodbav:"foodAttributes,omitempty" json:"foodAttributes,omitempty"`
	TotalRating    float64           `dynamodbav:"totalRating" json:"totalRating"`
	NumReviews     int               `dynamodbav:"numReviews" json:"numReviews"`
}

func (f FoodItem) GetKey() store.PK  { return Key(f.EntityID) }
func (f FoodItem) EntityRef() string { return TypeFoodItem + "#" + f.EntityID }
func (FoodItem) EntityType() string  { return TypeFoodItem }

// User is a reviewer. Created is set once and never changes.
type User struct {
	EntityID  string `dynamodbav:"entityId" json:"entityId"`
	Type      string `dynamodbav:"entityType" json:"entityType"`
	UserName  string `dynamodbav:"userName" json:"userName"`
	UserEmail string `dynamodbav:"userEmail" json:"userEmail"`
	Created   string `dynamodbav:"created" json:"created"`
}

func (u User) GetKey() store.PK  { return Key(u.EntityID) }
func (u User) EntityRef() string { return TypeUser + "#" + u.EntityID }
func (User) EntityType() string  { return TypeUser }

// Review is one user's rating of a food item.
type Review struct {
	EntityID   string  `dynamodbav:"entityId" json:"entityId"`
	Type       string  `dynamodbav:"entityType" json:"entityType"`
	FoodID     string  `dynamodbav:"foodId" json:"foodId"`
	UserID     string  `dynamodbav:"userId" json:"userId"`
	Quality    float64 `dynamodbav:"quality" json:"quality"`
	Quantity   int     `dynamodbav:"quantity" json:"quantity"`
	Rating     float64 `dynamodbav:"rating" json:"rating"`
	ReviewDate string  `dynamodbav:"reviewDate" json:"reviewDate"`
}

func (r Review) GetKey() store.PK  { return Key(r.EntityID) }
func (r Review) EntityRef() string { return TypeReview + "#" + r.EntityID }
func (Review) EntityType() string  { return TypeReview }

// Key returns the table key of an entity id.
func Key(id string) store.PK {
	return store.PK{AttrID: &types.AttributeValueMemberS{Value: id}}
}

// Marshal converts an entity to a DynamoDB item.
func Marshal(e store.Entity) (map[string]types.AttributeValue, error) {
	item, err := attributevalue.MarshalMap(e)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", e.EntityRef(), err)
	}
	return item, nil
}

// DecodeFoodItem decodes a food item row. Rows of another type are ErrNotFound.
func DecodeFoodItem(item map[string]types.AttributeValue) (*FoodItem, error) {
	var f FoodItem
	if err := decode(item, TypeFoodItem, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// DecodeUser decodes a user row. Rows of another type are ErrNotFound.
func DecodeUser(item map[string]types.AttributeValue) (*User, error) {
	var u User
	if err := decode(item, TypeUser, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// DecodeReview decodes a review row. Rows of another type are ErrNotFound.
func DecodeReview(item map[string]types.AttributeValue) (*Review, error) {
	var r Review
	if err := decode(item, TypeReview, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func decode(item map[string]types.AttributeValue, entityType string, out any) error {
	if TypeOf(item) != entityType {
		return platewise.ErrNotFound
	}
	if err := attributevalue.UnmarshalMap(item, out); err != nil {
		return fmt.Errorf("unmarshal %s: %w", entityType, err)
	}
	return nil
}

// TypeOf returns the entityType tag of a raw row, or "" if it has none.
func TypeOf(item map[string]types.AttributeValue) string {
	if v, ok := item[AttrType].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

// IDOf returns the entityId of a raw row, or "" if it has none.
func IDOf(item map[string]types.AttributeValue) string {
	if v, ok := item[AttrID].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

// mutableAttrs lists, per type, the attributes an in-place update may touch.
var mutableAttrs = map[string][]string{
	TypeFoodItem: {"foodName", "foodOrigin", "foodAttributes"},
	TypeUser:     {"userName", "userEmail"},
	TypeReview:   {"quality", "quantity", AttrRating, "reviewDate"},
}

// UpdateSet returns the update that writes e's caller-mutable attributes onto
// its existing row. Optional attributes that are now empty are removed.
// Derived aggregates and identity attributes are never part of the update.
func UpdateSet(e store.Entity) (store.UpdateInput, error) {
	attrs, ok := mutableAttrs[e.EntityType()]
	if !ok {
		return store.UpdateInput{}, fmt.Errorf("update set: unknown entity type %q", e.EntityType())
	}

	item, err := Marshal(e)
	if err != nil {
		return store.UpdateInput{}, err
	}

	in := store.UpdateInput{
		Set:         map[string]types.AttributeValue{},
		RequireType: e.EntityType(),
	}
	for _, attr := range attrs {
		if v, ok := item[attr]; ok {
			in.Set[attr] = v
		} else {
			in.Remove = append(in.Remove, attr)
		}
	}
	return in, nil
}
