package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FollowStatus is the state of a follow edge. A missing edge is the NONE state.
type FollowStatus string

const (
	FollowRequested FollowStatus = "requested"
	FollowAccepted  FollowStatus = "accepted"
)

// Follow is a directed edge from Follower to Followee. At most one exists per ordered pair.
type Follow struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Follower  primitive.ObjectID `json:"follower" bson:"follower"`
	Followee  primitive.ObjectID `json:"followee" bson:"followee"`
	Status    FollowStatus       `json:"status" bson:"status"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// FollowListType selects which side of the graph to list.
type FollowListType string

const (
	FollowListFollowers FollowListType = "followers"
	FollowListFollowing FollowListType = "following"
	FollowListRequests  FollowListType = "requests"
)

// FollowState describes the relationship between the caller and another account.
type FollowState struct {
	Following  FollowStatus `json:"following,omitempty"`
	FollowedBy FollowStatus `json:"followed_by,omitempty"`
}
