// Package manifest describes compiled units in YAML.
//
// A manifest lists types with their members and annotations, and the
// packages the processing round can see. It is an alternative front end to
// Java source: it loads into the same analyze.Index, and an Index can be
// dumped back to a manifest.
//
// Example:
//
//	version: "1"
//	packages: [net.minecraft.world]
//	types:
//	  - name: net.minecraft.world.World
//	    public: true
//	    fields:
//	      - {name: time, desc: I}
//	    methods:
//	      - {name: tick, desc: ()V}
//	  - name: com.example.WorldMixin
//	    public: true
//	    annotations:
//	      - name: Mixin
//	        values:
//	          value: {type: net.minecraft.world.World}
//	    methods:
//	      - name: onTick
//	        desc: ()V
//	        annotations:
//	          - name: Inject
//	            values:
//	              method: tick
//	              at: {annotation: {name: At, values: {value: HEAD}}}
//
// Annotation values are written as YAML scalars (string, bool or int),
// sequences, or single-key maps tagging a class literal (type), an enum
// constant (enum), a nested annotation (annotation) or an explicit string
// (string).
package manifest
