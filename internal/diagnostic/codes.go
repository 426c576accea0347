package diagnostic

// Diagnostic codes reported by the processor.
const (
	CodeTargetNotFound        = "target_not_found"
	CodeTargetPublicByName    = "target_public_by_name"
	CodeNoTargets             = "no_targets"
	CodePublicTargetsInvalid  = "public_targets_invalid"
	CodeNonMixinMember        = "non_mixin_member"
	CodeNoObfMapping          = "no_obf_mapping"
	CodeMultipleTargets       = "multiple_targets"
	CodeTargetMemberMissing   = "target_member_missing"
	CodeInjectionPointInvalid = "injection_point_invalid"
	CodeOverwriteJavadoc      = "overwrite_javadoc"
	CodeConstraintInvalid     = "constraint_invalid"
	CodeConstraintViolation   = "constraint_violation"
	CodeInnerMixinNotStatic   = "inner_mixin_not_static"
	CodeInterfaceTargetClass  = "interface_mixin_class_target"
	CodeSuperclassHierarchy   = "superclass_not_in_hierarchy"
	CodeImportUnreadable      = "imports_unreadable"
	CodeSessionUnreadable     = "session_unreadable"
	CodeExportFailed          = "export_failed"
	CodeMappingUnreadable     = "mappings_unreadable"
	CodeProcessorVersion      = "processor_version"
	CodeManifestInvalid       = "manifest_invalid"
)
