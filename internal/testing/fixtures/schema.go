// Package fixtures holds the DDL and reference rows integration tests load
// into a scratch database.
package fixtures

// FlatDDL creates the gene_nomenclature table written by the flat schema.
const FlatDDL = `
CREATE TABLE gene_nomenclature (
	id          bigserial PRIMARY KEY,
	potri_id    text NOT NULL UNIQUE,
	symbol      text NOT NULL,
	symbol_type text NOT NULL CHECK (symbol_type IN ('approved', 'alias', 'previous')),
	name        text NOT NULL,
	name_type   text NOT NULL CHECK (name_type IN ('approved', 'alias', 'previous')),
	location    text,
	locus_type  text NOT NULL,
	status      text NOT NULL CHECK (status IN ('internal', 'public'))
);`

// NormalizedDDL creates the reference and link tables written by the pgnc
// schema.
const NormalizedDDL = `
CREATE TABLE gene (
	id       bigserial PRIMARY KEY,
	potri_id text NOT NULL UNIQUE
);
CREATE TABLE location (
	id   bigserial PRIMARY KEY,
	name text NOT NULL
);
CREATE TABLE assembly_has_location (
	assembly_id bigint NOT NULL,
	location_id bigint NOT NULL REFERENCES location (id),
	PRIMARY KEY (assembly_id, location_id)
);
CREATE TABLE locus_type (
	id   bigserial PRIMARY KEY,
	name text NOT NULL UNIQUE
);
CREATE TABLE name (
	id   bigserial PRIMARY KEY,
	name text NOT NULL UNIQUE
);
CREATE TABLE symbol (
	id     bigserial PRIMARY KEY,
	symbol text NOT NULL UNIQUE
);
CREATE TABLE gene_has_location (
	gene_id     bigint NOT NULL REFERENCES gene (id),
	location_id bigint NOT NULL REFERENCES location (id),
	creator_id  bigint NOT NULL,
	editor_id   bigint NOT NULL,
	status      text NOT NULL,
	PRIMARY KEY (gene_id, location_id)
);
CREATE TABLE gene_has_locus_type (
	gene_id       bigint NOT NULL REFERENCES gene (id),
	locus_type_id bigint NOT NULL REFERENCES locus_type (id),
	creator_id    bigint NOT NULL,
	editor_id     bigint NOT NULL,
	status        text NOT NULL,
	PRIMARY KEY (gene_id, locus_type_id)
);
CREATE TABLE gene_has_name (
	gene_id    bigint NOT NULL REFERENCES gene (id),
	name_id    bigint NOT NULL REFERENCES name (id),
	type       text NOT NULL,
	creator_id bigint NOT NULL,
	editor_id  bigint NOT NULL,
	status     text NOT NULL,
	PRIMARY KEY (gene_id, name_id)
);
CREATE TABLE gene_has_symbol (
	gene_id    bigint NOT NULL REFERENCES gene (id),
	symbol_id  bigint NOT NULL REFERENCES symbol (id),
	type       text NOT NULL,
	creator_id bigint NOT NULL,
	editor_id  bigint NOT NULL,
	status     text NOT NULL,
	PRIMARY KEY (gene_id, symbol_id)
);`

// NormalizedSeed inserts the reference rows the pgnc schema links against.
const NormalizedSeed = `
INSERT INTO gene (potri_id) VALUES ('Potri.001G068400'), ('Potri.002G000100');
INSERT INTO location (id, name) VALUES (1, '1'), (2, '2');
INSERT INTO assembly_has_location (assembly_id, location_id) VALUES (1, 1), (1, 2);
INSERT INTO locus_type (name) VALUES ('protein-coding gene'), ('pseudogene');`
