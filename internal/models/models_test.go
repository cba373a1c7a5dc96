package models

import (
	"reflect"
	"strings"
	"testing"
)

// gormTag extracts the gorm tag from a struct field.
func gormTag(t *testing.T, typ reflect.Type, fieldName string) string {
	t.Helper()
	f, ok := typ.FieldByName(fieldName)
	if !ok {
		t.Fatalf("%s.%s: field not found", typ.Name(), fieldName)
	}
	return f.Tag.Get("gorm")
}

// assertGormTag checks that a struct field's gorm tag contains the expected value.
func assertGormTag(t *testing.T, typ reflect.Type, fieldName, expected string) {
	t.Helper()
	tag := gormTag(t, typ, fieldName)
	if !strings.Contains(tag, expected) {
		t.Errorf("%s.%s gorm tag = %q, want to contain %q", typ.Name(), fieldName, tag, expected)
	}
}

// assertFieldType checks that a struct field has the expected Go type.
func assertFieldType(t *testing.T, typ reflect.Type, fieldName, expectedType string) {
	t.Helper()
	f, ok := typ.FieldByName(fieldName)
	if !ok {
		t.Fatalf("%s.%s: field not found", typ.Name(), fieldName)
	}
	got := f.Type.String()
	if got != expectedType {
		t.Errorf("%s.%s type = %q, want %q", typ.Name(), fieldName, got, expectedType)
	}
}

func TestUser_Fields(t *testing.T) {
	typ := reflect.TypeOf(User{})

	assertGormTag(t, typ, "UserID", "primaryKey")
	assertGormTag(t, typ, "UserID", "size:31")
	assertGormTag(t, typ, "FeedbackPoints", "default:0")
	assertGormTag(t, typ, "IsBlocked", "default:false")
	assertGormTag(t, typ, "AllowPings", "default:true")
	assertGormTag(t, typ, "AcceptedRules", "default:false")

	assertFieldType(t, typ, "FeedbackPoints", "int")
	assertFieldType(t, typ, "AllowPings", "bool")
}

func TestThread_Fields(t *testing.T) {
	typ := reflect.TypeOf(Thread{})

	assertGormTag(t, typ, "ThreadID", "primaryKey")
	assertGormTag(t, typ, "OwnerID", "not null")
	assertGormTag(t, typ, "CollaboratorCount", "default:1")
	assertGormTag(t, typ, "Collaborators", "foreignKey:ThreadID")

	assertFieldType(t, typ, "Collaborators", "[]models.Collaborator")
}

func TestCollaborator_CompositeKey(t *testing.T) {
	typ := reflect.TypeOf(Collaborator{})

	assertGormTag(t, typ, "ThreadID", "primaryKey")
	assertGormTag(t, typ, "UserID", "primaryKey")
}

func TestThreadUser_Fields(t *testing.T) {
	typ := reflect.TypeOf(ThreadUser{})

	assertGormTag(t, typ, "ThreadID", "primaryKey")
	assertGormTag(t, typ, "UserID", "primaryKey")
	assertGormTag(t, typ, "IsCollaborator", "default:false")
	assertGormTag(t, typ, "IsBlocked", "default:false")

	assertFieldType(t, typ, "LastContractPosted", "*time.Time")
	assertFieldType(t, typ, "ActiveContractMessageID", "*string")
}

func TestSettings_Fields(t *testing.T) {
	typ := reflect.TypeOf(Settings{})

	assertGormTag(t, typ, "Identifier", "primaryKey")
	assertGormTag(t, typ, "ContractCooldownSec", "default:0")
	assertGormTag(t, typ, "StaffIsProtected", "default:true")
	assertGormTag(t, typ, "Channels", "foreignKey:SettingsID")
	assertGormTag(t, typ, "Tags", "foreignKey:SettingsID")
	assertGormTag(t, typ, "Roles", "foreignKey:SettingsID")
}

func TestRoleRequirement_Fields(t *testing.T) {
	typ := reflect.TypeOf(RoleRequirement{})

	assertGormTag(t, typ, "RoleType", "primaryKey")
	assertGormTag(t, typ, "SettingsID", "index")
	assertGormTag(t, typ, "Requirement", "default:1")
}

func TestSyncReport_Fields(t *testing.T) {
	typ := reflect.TypeOf(SyncReport{})

	assertGormTag(t, typ, "ID", "primaryKey")
	assertGormTag(t, typ, "RunID", "size:36")
	assertGormTag(t, typ, "RunID", "index")
	assertGormTag(t, typ, "UserID", "index")
	assertGormTag(t, typ, "Error", "type:text")

	assertFieldType(t, typ, "CreatedAt", "time.Time")
}

func TestRoleTypeConstants(t *testing.T) {
	if RoleTypeRegular != "regular" {
		t.Errorf("RoleTypeRegular = %q", RoleTypeRegular)
	}
	if RoleTypeVeteran != "veteran" {
		t.Errorf("RoleTypeVeteran = %q", RoleTypeVeteran)
	}
}
