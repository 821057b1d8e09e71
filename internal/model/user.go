package model

import (
    "strings"
    "time"
)

// Role is the closed set of account roles.  The zero value is not a
// valid role; callers normalize free-form input through ParseRole at
// the boundary so handlers never compare raw strings.
type Role string

const (
    RoleUser  Role = "user"  // regular moviegoer
    RoleAdmin Role = "admin" // back-office operator
)

// ParseRole normalizes s into a Role.  An empty string falls back to
// RoleUser, mirroring the registration default.  ok is false for any
// other unknown value.
func ParseRole(s string) (Role, bool) {
    switch Role(strings.ToLower(strings.TrimSpace(s))) {
    case RoleAdmin:
        return RoleAdmin, true
    case RoleUser, "":
        return RoleUser, true
    }
    return "", false
}

// Membership is the closed set of loyalty tiers.  Tier affects reward
// accrual, which happens outside this service; here it is only stored
// and validated.
type Membership string

const (
    MembershipRegular Membership = "Regular"
    MembershipPremium Membership = "Premium"
)

// ParseMembership validates a tier name.  Empty input defaults to
// Regular; matching is case-insensitive but the canonical casing is
// stored.
func ParseMembership(s string) (Membership, bool) {
    switch strings.ToLower(strings.TrimSpace(s)) {
    case "regular", "":
        return MembershipRegular, true
    case "premium":
        return MembershipPremium, true
    }
    return "", false
}

// User represents an application user record as stored in the `users`
// table.  PasswordHash is the bcrypt digest of the password and must
// never leave the service; response types in the handler package are
// built without it.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique login name.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – account role (user or admin).
//  Membership   – loyalty tier (Regular or Premium).
//  RewardPoints – non-negative loyalty balance, accrued externally.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
    ID           uint64     // users.id
    Username     string     // users.username
    Email        string     // users.email
    PasswordHash string     // users.password_hash
    Role         Role       // users.role
    Membership   Membership // users.membership
    RewardPoints uint64     // users.reward_points
    CreatedAt    time.Time  // users.created_at
    UpdatedAt    time.Time  // users.updated_at
}
